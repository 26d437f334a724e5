package cli

import (
	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"

	"go.viam.com/twoview/config"
)

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(cCtx *cli.Context) error {
	c := &twoviewClient{c: cCtx}
	return c.writeJSON(jsonschema.Reflect(&config.Config{}))
}

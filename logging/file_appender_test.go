package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twoview.log")
	appender := NewFileAppender(path, 1)
	logger := NewBlankLogger("file")
	logger.AddAppender(appender)

	logger.Infow("best support", "support", 12)
	logger.Debug("details")
	test.That(t, appender.Close(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "best support")
	test.That(t, string(data), test.ShouldContainSubstring, `{"support":12}`)
	test.That(t, string(data), test.ShouldContainSubstring, "details")
}

package api_test

import (
	"os"
	"testing"

	"github.com/swaralaya/scoreboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

package observability

import (
	"testing"

	"github.com/riskibarqy/clublocker/internal/config"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	if srv := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop()); srv != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := StopPprofServer(nil, nil, 0); err != nil {
		t.Fatalf("stop nil pprof server: %v", err)
	}
}

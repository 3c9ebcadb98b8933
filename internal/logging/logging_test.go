package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	defer func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	}()

	var buf bytes.Buffer
	if err := Setup(&buf, "warn", false); err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("dropped")
	log.Warn().Str("k", "v").Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "kept" || entry["k"] != "v" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetupInvalidLevel(t *testing.T) {
	if err := Setup(nil, "loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
}

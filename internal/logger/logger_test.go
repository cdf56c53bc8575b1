package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSetup_OutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Info("テストメッセージ", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("JSON形式のログが出力されるべき: %v (raw: %s)", err, buf.String())
	}
	if entry["msg"] != "テストメッセージ" {
		t.Errorf("msg = %v, want テストメッセージ", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want value", entry["key"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("timeフィールドが含まれるべき")
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
}

func TestSetup_DefaultLevelIsInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Debug("デバッグメッセージ")
	if buf.Len() != 0 {
		t.Errorf("デフォルトレベルではDebugが出力されないべき: %s", buf.String())
	}

	logger.Info("情報メッセージ")
	if buf.Len() == 0 {
		t.Error("Infoは出力されるべき")
	}
}

func TestSetup_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Debug("デバッグメッセージ")
	if buf.Len() == 0 {
		t.Error("LOG_LEVEL=debugではDebugが出力されるべき")
	}
}

func TestSetup_WarnLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Info("情報メッセージ")
	if buf.Len() != 0 {
		t.Errorf("LOG_LEVEL=warnではInfoが出力されないべき: %s", buf.String())
	}

	logger.Warn("警告メッセージ")
	if buf.Len() == 0 {
		t.Error("Warnは出力されるべき")
	}
}

func TestSetup_UnknownLevelDefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Debug("デバッグメッセージ")
	if buf.Len() != 0 {
		t.Error("不明なLOG_LEVELはinfoとして扱われるべき")
	}
}

package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

// stubLLM answers every request with reply.
type stubLLM struct {
	reply string
}

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return s.reply, nil
}

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return s.reply, nil
}

func (s *stubLLM) ModelName() string { return "stub" }
func (s *stubLLM) Close() error      { return nil }

func TestAskCmd_Flags(t *testing.T) {
	flag := askCmd.Flags().Lookup("type")
	require.NotNil(t, flag)
	assert.Equal(t, "general", flag.DefValue)
	assert.NotNil(t, askCmd.Flags().Lookup("ticker"))
	assert.NotNil(t, askCmd.Flags().Lookup("limit"))
}

func TestAskCmd_RequiresLLM(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "ask", "How did Naspers do?")
	assert.ErrorIs(t, err, domain.ErrLLMNotConfigured)
}

func TestSummariseCmd_RequiresLLM(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "summarise", "npn")
	assert.ErrorIs(t, err, domain.ErrLLMNotConfigured)
}

func TestSummariseCmd_Alias(t *testing.T) {
	assert.Contains(t, summariseCmd.Aliases, "summarize")
}

func TestEntitiesCmd_RequiresLLM(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "entities", "npn")
	assert.ErrorIs(t, err, domain.ErrLLMNotConfigured)
}

func TestEntitiesCmd(t *testing.T) {
	setupTestRuntimeWithLLM(t, &stubLLM{reply: `{"companies": ["Naspers"], "tickers": ["npn", "naspers"],
"people": [], "monetary_values": ["R12.4bn"], "dates": [], "metrics": []}`})
	dir := t.TempDir()

	_, err := execute(t, "ingest", writeFile(t, dir, "npn.txt", "Naspers earned R12.4bn."), "--id", "npn")
	require.NoError(t, err)

	out, err := execute(t, "entities", "npn")
	require.NoError(t, err)
	assert.Contains(t, out, "Companies")
	assert.Contains(t, out, "  Naspers")
	assert.Contains(t, out, "  NPN")
	assert.Contains(t, out, "  R12.4bn")
	assert.NotContains(t, out, "People")

	out, err = execute(t, "entities", "npn", "--json")
	require.NoError(t, err)
	var entities domain.Entities
	require.NoError(t, json.Unmarshal([]byte(out), &entities))
	assert.Equal(t, []string{"NPN"}, entities.Tickers)

	_, err = execute(t, "entities", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestExtract_Success(t *testing.T) {
	doc := &domain.Document{
		ID:       "doc-1",
		Name:     "npn_trading_statement.txt",
		MIMEType: "text/plain",
		Raw:      []byte("Naspers expects headline earnings to rise.\r\nTrading remains strong."),
	}

	result, err := New().Extract(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Units, 1)

	unit := result.Units[0]
	assert.Equal(t, "Naspers expects headline earnings to rise.\nTrading remains strong.", unit.Text)
	assert.Equal(t, domain.LocatorDocument, unit.Locator.Kind)
	assert.Empty(t, unit.Boundaries)
	assert.Equal(t, "npn trading statement", result.Metadata["title"])
	assert.Equal(t, unit.Text, result.Text())
}

func TestExtract_StripsBOM(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Raw: []byte("\xef\xbb\xbfSENS announcement")}

	result, err := New().Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "SENS announcement", result.Text())
}

func TestExtract_NilDocument(t *testing.T) {
	result, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtract_EmptyContent(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Raw: []byte{}}

	result, err := New().Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Empty(t, result.Units)
	assert.Empty(t, result.Text())
}

func TestExtract_InvalidUTF8(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Raw: []byte{0x48, 0xff, 0xfe, 0x49}}

	_, err := New().Extract(context.Background(), doc)
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestExtract_Deterministic(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Raw: []byte("same bytes")}

	a, err := New().Extract(context.Background(), doc)
	require.NoError(t, err)
	b, err := New().Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, &domain.Document{ID: "doc-1", Raw: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-editor/internal/domain"
)

type stubExtractor struct {
	st  *domain.Statement
	err error
}

func (s *stubExtractor) Name() string { return "stub" }

func (s *stubExtractor) Extract(ctx context.Context, rawText string) (*domain.Statement, error) {
	return s.st, s.err
}

func TestServiceUsesPrimary(t *testing.T) {
	want := &domain.Statement{Header: domain.Header{AccountHolder: "Primary"}}
	svc := NewServiceWith(&stubExtractor{st: want}, zerolog.Nop())

	st, source := svc.ExtractStatement(context.Background(), "irrelevant")
	assert.Same(t, want, st)
	assert.Equal(t, "stub", source)
}

func TestServiceFallsBackOnPrimaryError(t *testing.T) {
	svc := NewServiceWith(&stubExtractor{err: errors.New("model unavailable")}, zerolog.Nop())

	st, source := svc.ExtractStatement(context.Background(), sampleText)
	require.NotNil(t, st)
	assert.Equal(t, "offline", source)
	assert.Equal(t, "John Doe", st.Header.AccountHolder)
}

func TestServiceOfflineOnlyWithoutPrimary(t *testing.T) {
	svc := NewServiceWith(nil, zerolog.Nop())

	st, source := svc.ExtractStatement(context.Background(), sampleText)
	require.NotNil(t, st)
	assert.Equal(t, "offline", source)
	assert.Len(t, st.Transactions, 2)
}

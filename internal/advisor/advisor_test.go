package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) generate(context.Context, string) (string, error) {
	return s.reply, s.err
}

func stubbed(reply string, err error) *Gemini {
	return &Gemini{gen: &stubGenerator{reply: reply, err: err}, logger: slog.New(slog.DiscardHandler)}
}

func TestValidateParsesFencedReply(t *testing.T) {
	a := stubbed("Here is my assessment:\n```json\n{\"is_good\": \"yes\", \"risks\": [\"drops the city column\"], \"recommendation\": \"Proceed.\"}\n```\n", nil)

	adv, err := a.Validate(context.Background(), "Drop Columns", "drop 2 columns", []string{"city"}, nil)
	require.NoError(t, err)

	assert.True(t, adv.IsRecommended)
	assert.Equal(t, []string{"drops the city column"}, adv.Warnings)
	assert.Equal(t, "Proceed.", adv.Recommendation)
	assert.Equal(t, "Drop Columns", adv.Step)
}

func TestValidateBareJSONReply(t *testing.T) {
	a := stubbed(`{"is_good": false, "risks": "information loss\nmodel drift", "recommendation": "Keep them."}`, nil)

	adv, err := a.Validate(context.Background(), "Drop Columns", "drop 5 columns", nil, nil)
	require.NoError(t, err)

	assert.False(t, adv.IsRecommended)
	assert.Equal(t, []string{"information loss", "model drift"}, adv.Warnings)
}

func TestValidateGeneratorFailure(t *testing.T) {
	a := stubbed("", fmt.Errorf("network down"))

	_, err := a.Validate(context.Background(), "Feature Scaling", "standard scale", nil, nil)
	var unavailable *core.AdvisoryUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestValidateUnparsableReply(t *testing.T) {
	a := stubbed("I cannot answer in JSON, sorry.", nil)

	_, err := a.Validate(context.Background(), "Feature Scaling", "standard scale", nil, nil)
	var unavailable *core.AdvisoryUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestValidateDefaultsWhenFieldsMissing(t *testing.T) {
	a := stubbed(`{}`, nil)

	adv, err := a.Validate(context.Background(), "Categorical Encoding", "one-hot city", nil, nil)
	require.NoError(t, err)

	assert.True(t, adv.IsRecommended)
	assert.Empty(t, adv.Warnings)
	assert.Equal(t, "Proceed with caution", adv.Recommendation)
}

func TestNoopAdvisor(t *testing.T) {
	_, err := Noop{}.Validate(context.Background(), "x", "y", nil, nil)
	var unavailable *core.AdvisoryUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionValid(t *testing.T) {
	for _, a := range ValidActions {
		assert.True(t, a.Valid(), "action %q should be valid", a)
	}
	assert.False(t, Action("hover").Valid())
	assert.False(t, Action("").Valid())
}

func TestPatternKey(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Pattern
		equal bool
	}{
		{
			name:  "same text and action",
			a:     Pattern{NormalizedText: "click the save button", Action: ActionClick},
			b:     Pattern{NormalizedText: "click the save button", Action: ActionClick},
			equal: true,
		},
		{
			name:  "case insensitive text",
			a:     Pattern{NormalizedText: "Click The Save Button", Action: ActionClick},
			b:     Pattern{NormalizedText: "click the save button", Action: ActionClick},
			equal: true,
		},
		{
			name:  "same text different action is distinct",
			a:     Pattern{NormalizedText: "the login form", Action: ActionFill},
			b:     Pattern{NormalizedText: "the login form", Action: ActionAssert},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Key() == tt.b.Key())
		})
	}
}

func TestPatternValidate(t *testing.T) {
	valid := Pattern{
		ID:             NewID(),
		NormalizedText: "navigate to dashboard",
		OriginalText:   "Navigate to Dashboard",
		Action:         ActionNavigate,
		Confidence:     0.8,
		Layer:          LayerUniversal,
		Category:       "navigation",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Pattern)
		wantErr error
	}{
		{"empty text", func(p *Pattern) { p.NormalizedText = "  " }, ErrEmptyText},
		{"bad action", func(p *Pattern) { p.Action = "hover" }, ErrInvalidAction},
		{"confidence above ceiling", func(p *Pattern) { p.Confidence = 0.96 }, ErrInvalidConfidence},
		{"confidence at one", func(p *Pattern) { p.Confidence = 1.0 }, ErrInvalidConfidence},
		{"negative confidence", func(p *Pattern) { p.Confidence = -0.1 }, ErrInvalidConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.5))
	assert.Equal(t, 0.5, ClampConfidence(0.5))
	assert.Equal(t, MaxConfidence, ClampConfidence(0.95))
	assert.Equal(t, MaxConfidence, ClampConfidence(1.0))
}

func TestAddJourneyIdempotent(t *testing.T) {
	p := Pattern{NormalizedText: "x", Action: ActionClick}
	p.AddJourney("j1")
	p.AddJourney("j2")
	p.AddJourney("j1")
	p.AddJourney("")
	assert.Equal(t, []string{"j1", "j2"}, p.SourceJourneys)
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	// Legacy reset hook must not panic and must stay a no-op.
	ResetIDCounter()
}

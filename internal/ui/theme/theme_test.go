package theme

import (
	"testing"

	"github.com/dori/checkmark/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	t.Cleanup(func() { SetTheme(Light) })

	Apply(true)
	assert.Equal(t, "dark", Current.Theme.Name)
	assert.True(t, Current.Theme.Dark)

	Apply(false)
	assert.Equal(t, "light", Current.Theme.Name)
}

func TestByName(t *testing.T) {
	th, ok := ByName("dark")
	assert.True(t, ok)
	assert.True(t, th.Dark)

	_, ok = ByName("dracula")
	assert.False(t, ok)
}

func TestPriorityColor(t *testing.T) {
	assert.Equal(t, Dark.PriorityHigh, Dark.PriorityColor(model.PriorityHigh))
	assert.Equal(t, Dark.PriorityLow, Dark.PriorityColor(model.PriorityLow))
	assert.Equal(t, Dark.PriorityMedium, Dark.PriorityColor(model.Priority("")))
}

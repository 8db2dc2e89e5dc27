package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestLabel_ShortQuestionUntouched(t *testing.T) {
	m := Market{Question: "Will A happen?"}
	assert.Equal(t, "Will A happen?", m.Label(40))
}

func TestLabel_FallsBackToID(t *testing.T) {
	m := Market{ID: "0xabc123"}
	assert.Equal(t, "0xabc123", m.Label(40))
}

func TestLabel_TruncatesByRunes(t *testing.T) {
	// 46 runas con multi-byte: el corte por bytes partiría una "á".
	m := Market{Question: "¿Ganará el partido la reelección en las urnas?"}
	out := m.Label(20)

	assert.True(t, utf8.ValidString(out))
	// 17 runas de pregunta + "..." = 20 runas exactas.
	assert.Equal(t, 20, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, "¿Ganará el partid...", out)
}

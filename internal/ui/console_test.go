package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uisync/internal/state"
)

func TestConsole_Navigator(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsole(&buf, ConsoleOptions{}).Primitives()
	ctx := context.Background()

	require.NoError(t, p.Navigator.Push(ctx, "dish", state.Params{"id": 3, "from": "list"}))
	require.NoError(t, p.Navigator.Pop(ctx, NavOptions{Animate: false}))
	require.NoError(t, p.Navigator.SetRoot(ctx, "home", nil, NavOptions{}))

	assert.Equal(t,
		"nav   push dish {from=list, id=3}\n"+
			"nav   pop (animate=false)\n"+
			"nav   set-root home (animate=false)\n",
		buf.String())
}

func TestConsole_ToastOptions(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsole(&buf, ConsoleOptions{}).Primitives()

	h, err := p.Overlays[state.OverlayToast].Create("hello")
	require.NoError(t, err)
	require.NoError(t, h.Present(context.Background()))
	require.NoError(t, h.Dismiss(context.Background()))

	assert.Equal(t, "toast present \"hello\" (bottom, 4s)\ntoast dismiss\n", buf.String())
}

func TestConsole_TranslatesLabels(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	var buf bytes.Buffer
	p := NewConsole(&buf, ConsoleOptions{Translator: tr}).Primitives()
	h, err := p.Overlays[state.OverlayLoader].Create("LOADING")
	require.NoError(t, err)
	require.NoError(t, h.Present(context.Background()))

	assert.Contains(t, buf.String(), `"Loading..."`)
}

func TestConsole_SettleHonoursContext(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsole(&buf, ConsoleOptions{Settle: time.Hour}).Primitives()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Navigator.Pop(ctx, NavOptions{Animate: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranslator_DefaultLanguage(t *testing.T) {
	tr, err := NewTranslator("")
	require.NoError(t, err)
	assert.Equal(t, "Zapisano", tr.Translate("SAVED"))
	assert.Equal(t, "plain text", tr.Translate("plain text"), "unknown IDs pass through")
	assert.Equal(t, "", tr.Translate(""))
}

func TestTranslator_MessageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active.en.toml")
	require.NoError(t, os.WriteFile(path, []byte("ORDER_PLACED = \"Order placed\"\n"), 0o644))

	tr, err := NewTranslator("en", path)
	require.NoError(t, err)
	assert.Equal(t, "Order placed", tr.Translate("ORDER_PLACED"))
}

func TestTranslator_Nil(t *testing.T) {
	var tr *Translator
	assert.Equal(t, "x", tr.Translate("x"))
}

func TestNewTranslator_BadLanguage(t *testing.T) {
	_, err := NewTranslator("not a language!")
	assert.Error(t, err)
}

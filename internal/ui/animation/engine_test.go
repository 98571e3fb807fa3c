package animation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	phases []Phase
}

func (rec *recorder) apply(phase Phase) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.phases = append(rec.phases, phase)
}

func (rec *recorder) snapshot() []Phase {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Phase(nil), rec.phases...)
}

func fastConfig() Config {
	return Config{FlashOn: 5 * time.Millisecond, FlashOff: 5 * time.Millisecond}
}

func TestFlashEndsInNormalPhase(t *testing.T) {
	rec := &recorder{}
	engine := New(fastConfig(), rec.apply)

	engine.Flash(context.Background(), 40*time.Millisecond)

	require.Eventually(t, func() bool {
		phases := rec.snapshot()
		return len(phases) > 2 && phases[len(phases)-1] == PhaseNormal
	}, time.Second, 5*time.Millisecond)

	phases := rec.snapshot()
	assert.Equal(t, PhaseFlashOn, phases[0])
	assert.Contains(t, phases, PhaseFlashOff)
	assert.Equal(t, PhaseNormal, engine.Phase())
}

func TestAlertCancelsFlash(t *testing.T) {
	rec := &recorder{}
	engine := New(fastConfig(), rec.apply)

	engine.Flash(context.Background(), time.Hour)
	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, time.Second, time.Millisecond)

	engine.Alert()
	count := len(rec.snapshot())
	time.Sleep(30 * time.Millisecond)

	phases := rec.snapshot()
	assert.Len(t, phases, count)
	assert.Equal(t, PhaseAlert, phases[len(phases)-1])
	assert.Equal(t, PhaseAlert, engine.Phase())
}

func TestStopReturnsToNormal(t *testing.T) {
	rec := &recorder{}
	engine := New(fastConfig(), rec.apply)

	engine.Alert()
	engine.Stop()

	assert.Equal(t, []Phase{PhaseAlert, PhaseNormal}, rec.snapshot())
}

func TestParentCancelStopsFlash(t *testing.T) {
	rec := &recorder{}
	engine := New(fastConfig(), rec.apply)
	ctx, cancel := context.WithCancel(context.Background())

	engine.Flash(ctx, time.Hour)
	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, time.Second, time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	count := len(rec.snapshot())
	time.Sleep(30 * time.Millisecond)

	assert.Len(t, rec.snapshot(), count)
}

func TestPaletteColor(t *testing.T) {
	palette := DefaultPalette()
	assert.Equal(t, palette.Normal, palette.Color(PhaseNormal))
	assert.Equal(t, palette.Warning, palette.Color(PhaseFlashOn))
	assert.Equal(t, palette.Dimmed, palette.Color(PhaseFlashOff))
	assert.Equal(t, palette.Alert, palette.Color(PhaseAlert))
	assert.False(t, PhaseNormal.Warning())
	assert.True(t, PhaseAlert.Warning())
}

package browser

import (
	"testing"
	"time"

	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/aleister1102/pricefeed/internal/watcher"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portalHTML = `<html><body>
<button id="download-button-autofix">Auto Fix</button>
<div id="brands-checkboxes">
	<label><input type="checkbox" id="b1" checked> BERU</label>
	<label><input type="checkbox" id="b2"> SH</label>
	<label><input type="checkbox" disabled> OLD</label>
	<label><input type="checkbox"> RN</label>
</div>
<button class="primary">Descargar Lista de Precios</button>
<a class="btn-download" href="/file">Bajar</a>
</body></html>`

func TestPageInspector_FindLocator(t *testing.T) {
	pi, err := NewPageInspector(portalHTML)
	require.NoError(t, err)

	tests := []struct {
		name     string
		locators []models.Locator
		want     int
		ok       bool
	}{
		{"text match is case-insensitive", []models.Locator{{CSS: "button", Text: "descargar lista"}}, 0, true},
		{"first match wins", []models.Locator{{CSS: "button.download-button"}, {CSS: "a[class*='download']"}, {CSS: "button", Text: "Descargar"}}, 1, true},
		{"text must be present", []models.Locator{{CSS: "button", Text: "Exportar"}}, -1, false},
		{"no locators", nil, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := pi.FindLocator(tt.locators)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, idx)
		})
	}
}

func TestPageInspector_UncheckedBoxes(t *testing.T) {
	pi, err := NewPageInspector(portalHTML)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, pi.UncheckedBoxes(CheckboxContainer))
	assert.Empty(t, pi.UncheckedBoxes("#missing"))
}

func TestPageInspector_LoginForm(t *testing.T) {
	login, err := NewPageInspector(`<form><input id="username"><input id="password" type="password"><button class="login-button">Entrar</button></form>`)
	require.NoError(t, err)
	assert.True(t, login.HasLoginForm())

	portal, err := NewPageInspector(portalHTML)
	require.NoError(t, err)
	assert.False(t, portal.HasLoginForm())
	assert.True(t, portal.HasElement("download-button-autofix"))
	assert.False(t, portal.HasElement("download-button-repcar"))
}

func TestIsLoginURL(t *testing.T) {
	assert.True(t, IsLoginURL("https://portal.example.com/Login?next=/"))
	assert.False(t, IsLoginURL("https://portal.example.com/proveedores"))
}

func TestScreenshotName(t *testing.T) {
	name := ScreenshotName("auto fix/1", time.Date(2024, 5, 1, 10, 4, 5, 0, time.UTC))
	assert.Equal(t, "screenshot_auto_fix_1_20240501-100405.png", name)
	assert.False(t, watcher.IsResultCandidate("/downloads/"+name))
}

func TestNewSession_RequiresPortalURL(t *testing.T) {
	_, err := NewSession(t.Context(), config.NewDefaultPortalConfig(), t.TempDir(), t.TempDir(), zerolog.Nop())
	assert.Error(t, err)
}

package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	assert.Equal(t, "BTCTMN", Build("btc", "TMN"))
	assert.Equal(t, "DOGETMN", Build(" doge ", "tmn"))
	assert.Equal(t, "", Build("", "TMN"))
	assert.Equal(t, "", Build("BTC", ""))
}

func TestParse(t *testing.T) {
	sym := Parse("BTCTMN", "TMN")
	assert.Equal(t, "BTC", sym.Base)
	assert.Equal(t, "TMN", sym.Quote)
	assert.Equal(t, "BTC/TMN", sym.Display())

	assert.Equal(t, Symbol{}, Parse("TMN", "TMN"))
	assert.Equal(t, Symbol{}, Parse("", "TMN"))
	assert.Equal(t, Symbol{}, Parse("BTCUSD", "TMN"))
}

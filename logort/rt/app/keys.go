package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/alleriumlabs/particlelogo/logort/rt/host"
)

var panelKeys = map[glfw.Key]host.Key{
	glfw.KeySpace:        host.KeySpace,
	glfw.KeyLeftBracket:  host.KeyLeftBracket,
	glfw.KeyRightBracket: host.KeyRightBracket,
	glfw.KeyMinus:        host.KeyMinus,
	glfw.KeyKPSubtract:   host.KeyMinus,
	glfw.KeyEqual:        host.KeyEqual,
	glfw.KeyKPAdd:        host.KeyEqual,
	glfw.KeyT:            host.KeyT,
	glfw.KeyR:            host.KeyR,
	glfw.KeyH:            host.KeyH,
}

func PanelKey(key glfw.Key) host.Key {
	if k, ok := panelKeys[key]; ok {
		return k
	}
	return host.KeyUnknown
}

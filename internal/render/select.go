package render

import "github.com/rs/zerolog"

// Select probes once for the dot binary and returns the renderer used for
// the auto format: Graphviz when installed, otherwise the network page.
func Select(gv *Graphviz, network *Network, log zerolog.Logger) Renderer {
	if gv.Available() {
		log.Info().Str("renderer", NameGraphviz).Str("bin", gv.bin).Msg("diagram renderer selected")
		return gv
	}

	log.Warn().Str("renderer", NameNetwork).Str("bin", gv.bin).Msg("graphviz not found, diagrams use the network view")

	return network
}

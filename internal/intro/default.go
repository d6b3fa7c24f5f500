package intro

// Player targets, matched by data-intro-target attributes in the intro page.
const (
	TargetPresents = "presents"
	TargetLogo     = "logo"
	TargetCurtain  = "curtain"
	TargetRoot     = "intro"
)

// Default is the brand intro: the distillery credit fades in, the logo spins
// into place and pulses, both fade out, a curtain wipes the screen and the
// overlay fades away.
func Default() *Timeline {
	t := &Timeline{}
	return t.MustAdd(
		Step{
			Target:   TargetPresents,
			From:     map[string]any{"opacity": 0, "scale": 0.8},
			To:       map[string]any{"opacity": 1, "scale": 1},
			Duration: Seconds(1),
			Ease:     "power3.out",
		},
		Step{
			Target:   TargetLogo,
			From:     map[string]any{"scale": 0, "rotation": -540, "opacity": 0},
			To:       map[string]any{"scale": 1, "rotation": 0, "opacity": 1},
			Duration: Seconds(2),
			Ease:     "elastic.out(1, 0.8)",
			Position: "+=0.5",
		},
		Step{
			Target:   TargetLogo,
			To:       map[string]any{"filter": "drop-shadow(0 0 30px rgba(255,255,255,0.8))", "scale": 1.1},
			Duration: Seconds(0.5),
			Repeat:   2,
			Yoyo:     true,
			Ease:     "power2.inOut",
		},
		Step{
			Target:   TargetPresents,
			To:       map[string]any{"opacity": 0, "scale": 0.9},
			Duration: Seconds(0.5),
			Ease:     "power2.in",
			Position: "+=0.3",
		},
		Step{
			Target:   TargetLogo,
			To:       map[string]any{"scale": 0, "opacity": 0, "rotation": 180},
			Duration: Seconds(0.8),
			Ease:     "power2.in",
			Position: "-=0.2",
		},
		Step{
			Target:   TargetCurtain,
			From:     map[string]any{"scaleY": 0, "transformOrigin": "top"},
			To:       map[string]any{"scaleY": 1},
			Duration: Seconds(0.6),
			Ease:     "power2.out",
			Position: "+=0.2",
		},
		Step{
			Target:   TargetCurtain,
			To:       map[string]any{"scaleY": 0, "transformOrigin": "bottom"},
			Duration: Seconds(0.6),
			Ease:     "power2.in",
			Position: "+=0.3",
		},
		Step{
			Target:   TargetRoot,
			To:       map[string]any{"opacity": 0},
			Duration: Seconds(0.5),
			Ease:     "power2.in",
			Position: "-=0.3",
		},
	)
}

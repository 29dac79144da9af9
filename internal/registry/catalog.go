package registry

import (
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

const (
	Mechanics        = "Mechanics"
	Collisions       = "Collisions"
	Statics          = "Statics"
	Fluids           = "Fluids"
	Electromagnetism = "Electromagnetism"
	Optics           = "Optics"
	Waves            = "Waves"
)

func catalog() []Entry {
	return []Entry{
		{
			Meta:  Meta{"pendulum", "Simple pendulum", "Nonlinear pendulum with damping and sub-stepped integration.", Mechanics},
			Kind:  dynamo.KindPendulum,
			Build: pendulum,
		},
		{
			Meta:   Meta{"moon-pendulum", "Pendulum on the Moon", "The same pendulum under lunar gravity.", Mechanics},
			Kind:   dynamo.KindPendulum,
			Values: map[string]float64{"gravity": 1.62, "angle": 45},
			Build:  pendulum,
		},
		{
			Meta:  Meta{"free-fall", "Free fall with drag", "A body dropped through air approaches terminal velocity.", Mechanics},
			Kind:  dynamo.KindFreeFall,
			Build: plain(physics.NewFreeFall),
		},
		{
			Meta:   Meta{"vacuum-drop", "Drop in a vacuum", "Free fall with no air resistance.", Mechanics},
			Kind:   dynamo.KindFreeFall,
			Values: map[string]float64{"drag": 0},
			Build:  plain(physics.NewFreeFall),
		},
		{
			Meta:  Meta{"projectile", "Projectile motion", "Closed-form trajectory of a launched ball.", Mechanics},
			Kind:  dynamo.KindProjectile,
			Build: plain(physics.NewProjectile),
		},
		{
			Meta:   Meta{"cliff-launch", "Cliff launch", "A projectile launched from a 50 m cliff.", Mechanics},
			Kind:   dynamo.KindProjectile,
			Values: map[string]float64{"height": 50, "angle": 30, "speed": 15},
			Build:  plain(physics.NewProjectile),
		},
		{
			Meta:  Meta{"collision-1d", "Elastic carts", "Two carts on a track exchanging momentum.", Collisions},
			Kind:  dynamo.KindCollision,
			Build: plain(physics.NewCarts),
		},
		{
			Meta:  Meta{"gas-box", "Gas in a box", "Many discs colliding elastically inside a box.", Collisions},
			Kind:  dynamo.KindCollision,
			Build: plain(physics.NewGasBox),
		},
		{
			Meta:  Meta{"balance-beam", "Balance beam", "Torques from masses on a lever tip the beam.", Statics},
			Kind:  dynamo.KindBalance,
			Build: plain(physics.NewBalance),
		},
		{
			Meta:  Meta{"venturi", "Pipe continuity", "Flow speeds up where a pipe narrows.", Fluids},
			Kind:  dynamo.KindFluid,
			Build: plain(physics.NewFluid),
		},
		{
			Meta:   Meta{"dipole-field", "Electric dipole", "Field of opposite charges with a test charge.", Electromagnetism},
			Kind:   dynamo.KindField,
			Values: map[string]float64{"probe_q": 0.5},
			Build:  plain(physics.NewField),
		},
		{
			Meta:   Meta{"like-charges", "Like charges", "Two positive charges repel field lines.", Electromagnetism},
			Kind:   dynamo.KindField,
			Values: map[string]float64{"q2": 5},
			Build:  plain(physics.NewField),
		},
		{
			Meta:  Meta{"refraction", "Snell's law", "A ray bends crossing into a denser medium.", Optics},
			Kind:  dynamo.KindRefraction,
			Build: plain(physics.NewSnell),
		},
		{
			Meta:   Meta{"total-internal-reflection", "Total internal reflection", "Past the critical angle no light escapes.", Optics},
			Kind:   dynamo.KindRefraction,
			Values: map[string]float64{"n1": 1.5, "n2": 1, "angle": 50},
			Build:  plain(physics.NewSnell),
		},
		{
			Meta:  Meta{"double-slit", "Double slit", "Photon hits build up an interference pattern.", Optics},
			Kind:  dynamo.KindInterference,
			Build: plain(physics.NewInterference),
		},
		{
			Meta:  Meta{"wave-beats", "Beats", "Two close frequencies produce a beat envelope.", Waves},
			Kind:  dynamo.KindWave,
			Build: plain(physics.NewWave),
		},
		{
			Meta:   Meta{"standing-wave", "Standing wave", "Equal counter-propagating waves leave fixed nodes.", Waves},
			Kind:   dynamo.KindWave,
			Values: map[string]float64{"l2": 4, "f2": 1, "counter": 1},
			Build:  plain(physics.NewWave),
		},
	}
}

package emitter

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/ink/config"
	"github.com/pthm-cable/ink/fluid"
	"github.com/pthm-cable/ink/input"
)

// SplatSink receives emitted splats. fluid.Driver implements it.
type SplatSink interface {
	AddSplat(s fluid.Splat)
}

// wanderRange is how far from the centre a wanderer's path reaches.
const wanderRange = 0.4

// System owns the emitter world.
type System struct {
	cfg   config.EmitterConfig
	input config.InputConfig

	world      *ecs.World
	burstMap   *ecs.Map4[Position, Velocity, Tint, Life]
	burstQuery *ecs.Filter4[Position, Velocity, Tint, Life]
	wanderMap  *ecs.Map4[Position, Velocity, Tint, Wander]
	wanderers  *ecs.Filter4[Position, Velocity, Tint, Wander]

	noise opensimplex.Noise
	rng   *rand.Rand
	clock float64

	bursts  int
	wanders int
	expired []ecs.Entity
}

// NewSystem creates an empty emitter world. seed fixes burst jitter and
// wanderer paths.
func NewSystem(cfg config.EmitterConfig, in config.InputConfig, seed int64) *System {
	world := ecs.NewWorld()
	return &System{
		cfg:        cfg,
		input:      in,
		world:      world,
		burstMap:   ecs.NewMap4[Position, Velocity, Tint, Life](world),
		burstQuery: ecs.NewFilter4[Position, Velocity, Tint, Life](world),
		wanderMap:  ecs.NewMap4[Position, Velocity, Tint, Wander](world),
		wanderers:  ecs.NewFilter4[Position, Velocity, Tint, Wander](world),
		noise:      opensimplex.New(seed),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Burst spawns burst_count emitters radiating from (x, y), spread evenly
// around the circle with a little jitter. Colours fan out from hue.
func (s *System) Burst(x, y float32, hue float64) int {
	n := s.cfg.BurstCount
	for i := 0; i < n; i++ {
		angle := 2*math.Pi*float64(i)/float64(n) + (s.rng.Float64()-0.5)*0.4
		speed := s.cfg.BurstSpeed * (0.75 + 0.5*s.rng.Float64())

		pos := Position{X: x, Y: y}
		vel := Velocity{
			X: float32(math.Cos(angle) * speed),
			Y: float32(math.Sin(angle) * speed),
		}
		tint := Tint{RGB: input.HueColor(hue+float64(i)*360/float64(n), s.input)}
		life := Life{Span: float32(s.cfg.BurstLife)}
		s.burstMap.NewEntity(&pos, &vel, &tint, &life)
	}
	s.bursts += n
	return n
}

// Update advances every emitter by dt and queues one splat per emitter into
// sink. Wanderers exist only while idle is at least idle_after seconds; hue
// tints them.
func (s *System) Update(dt float64, idle float64, hue float64, sink SplatSink) {
	s.clock += dt
	s.updateBursts(float32(dt), sink)

	if idle >= s.cfg.IdleAfter && s.cfg.IdleCount > 0 {
		s.spawnWanderers()
		s.updateWanderers(dt, hue, sink)
	} else if s.wanders > 0 {
		s.removeWanderers()
	}
}

func (s *System) updateBursts(dt float32, sink SplatSink) {
	force := float32(s.cfg.Force)
	s.expired = s.expired[:0]

	query := s.burstQuery.Query()
	for query.Next() {
		pos, vel, tint, life := query.Get()

		life.Age += dt
		fade := life.Fade()
		if fade <= 0 {
			s.expired = append(s.expired, query.Entity())
			continue
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		sink.AddSplat(fluid.Splat{
			X:  pos.X,
			Y:  pos.Y,
			DX: vel.X * force * fade,
			DY: vel.Y * force * fade,
			Color: [3]float32{
				tint.RGB[0] * fade,
				tint.RGB[1] * fade,
				tint.RGB[2] * fade,
			},
		})
	}

	for _, e := range s.expired {
		s.world.RemoveEntity(e)
	}
	s.bursts -= len(s.expired)
}

// wanderAt returns a wanderer's position on its noise path at time t.
func (s *System) wanderAt(offset, t float64) (float32, float32) {
	u := t * s.cfg.IdleSpeed
	x := 0.5 + wanderRange*s.noise.Eval2(u, offset)
	y := 0.5 + wanderRange*s.noise.Eval2(offset, u+100)
	return float32(x), float32(y)
}

func (s *System) spawnWanderers() {
	for s.wanders < s.cfg.IdleCount {
		w := Wander{Offset: float64(s.wanders)*17.3 + s.rng.Float64()}
		x, y := s.wanderAt(w.Offset, s.clock)
		pos := Position{X: x, Y: y}
		s.wanderMap.NewEntity(&pos, &Velocity{}, &Tint{}, &w)
		s.wanders++
	}
}

func (s *System) updateWanderers(dt, hue float64, sink SplatSink) {
	if dt <= 0 {
		return
	}
	force := float32(s.cfg.Force)

	query := s.wanderers.Query()
	for query.Next() {
		pos, vel, tint, w := query.Get()

		x, y := s.wanderAt(w.Offset, s.clock)
		vel.X = (x - pos.X) / float32(dt)
		vel.Y = (y - pos.Y) / float32(dt)
		pos.X, pos.Y = x, y
		tint.RGB = input.HueColor(hue+w.Offset*40, s.input)

		sink.AddSplat(fluid.Splat{
			X:     x,
			Y:     y,
			DX:    vel.X * force,
			DY:    vel.Y * force,
			Color: tint.RGB,
		})
	}
}

func (s *System) removeWanderers() {
	s.expired = s.expired[:0]
	query := s.wanderers.Query()
	for query.Next() {
		s.expired = append(s.expired, query.Entity())
	}
	for _, e := range s.expired {
		s.world.RemoveEntity(e)
	}
	s.wanders = 0
}

// Counts returns the number of live burst and idle emitters.
func (s *System) Counts() (bursts, wanderers int) {
	return s.bursts, s.wanders
}

// Clear removes every emitter.
func (s *System) Clear() {
	s.expired = s.expired[:0]
	query := s.burstQuery.Query()
	for query.Next() {
		s.expired = append(s.expired, query.Entity())
	}
	for _, e := range s.expired {
		s.world.RemoveEntity(e)
	}
	s.bursts = 0
	s.removeWanderers()
}

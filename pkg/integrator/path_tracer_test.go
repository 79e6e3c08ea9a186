package integrator

import (
	"math"
	"testing"

	"github.com/ItsHoff/rusty/pkg/core"
	"github.com/ItsHoff/rusty/pkg/scene"
)

func testConfig() scene.SamplingConfig {
	return scene.SamplingConfig{
		Width:                     64,
		Height:                    64,
		SamplesPerPixel:           4,
		MaxDepth:                  6,
		RussianRouletteMinBounces: 3,
	}
}

func testCornell(t *testing.T) *scene.Scene {
	t.Helper()
	s, ok := scene.NewScene(scene.SceneCornell, testConfig())
	if !ok {
		t.Fatal("cornell scene should exist")
	}
	return s
}

func TestPathTracer_DepthZero(t *testing.T) {
	s := testCornell(t)
	pt := NewPathTracer(scene.SamplingConfig{MaxDepth: 0, RussianRouletteMinBounces: 100})
	sampler := core.NewSeededSampler(1)

	ray := s.Camera.GetRay(32, 32, core.NewVec2(0.5, 0.5))
	color, splats := pt.RayColor(ray, s, sampler)
	if !color.IsBlack() {
		t.Errorf("zero depth should return black, got %v", color)
	}
	if len(splats) != 0 {
		t.Error("path tracing never produces splats")
	}
}

func TestPathTracer_ProducesLight(t *testing.T) {
	s := testCornell(t)
	pt := NewPathTracer(s.SamplingConfig)
	sampler := core.NewSeededSampler(2)

	var total core.Vec3
	const n = 64
	for i := 0; i < n; i++ {
		ray := s.Camera.GetRay(32, 32, sampler.Get2D())
		color, _ := pt.RayColor(ray, s, sampler)
		if !color.IsFinite() {
			t.Fatalf("sample %d returned a non-finite color: %v", i, color)
		}
		if color.X < 0 || color.Y < 0 || color.Z < 0 {
			t.Fatalf("sample %d returned a negative color: %v", i, color)
		}
		total = total.Add(color)
	}

	if total.IsBlack() {
		t.Error("the lit box should not be completely dark")
	}
}

func TestPathTracer_DirectLightVisible(t *testing.T) {
	s := testCornell(t)
	pt := NewPathTracer(s.SamplingConfig)
	sampler := core.NewSeededSampler(3)

	// A ray straight up at the ceiling panel picks up its emission
	ray := core.NewRay(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0, 1, 0))
	color, _ := pt.RayColor(ray, s, sampler)
	if color.X < 10 {
		t.Errorf("ray into the light should see its emission, got %v", color)
	}
}

func TestPathTracer_Deterministic(t *testing.T) {
	s := testCornell(t)
	pt := NewPathTracer(s.SamplingConfig)
	ray := s.Camera.GetRay(20, 40, core.NewVec2(0.5, 0.5))

	a, _ := pt.RayColor(ray, s, core.NewSeededSampler(42))
	b, _ := pt.RayColor(ray, s, core.NewSeededSampler(42))
	if a != b {
		t.Errorf("same seed should reproduce the estimate: %v vs %v", a, b)
	}
}

func TestPathTracer_EnvironmentFallback(t *testing.T) {
	s := testCornell(t)
	s.Background = core.NewVec3(0.2, 0.4, 0.6)
	pt := NewPathTracer(s.SamplingConfig)
	sampler := core.NewSeededSampler(4)

	// Out through the open front of the box
	ray := core.NewRay(core.NewVec3(0.5, 0.5, 1.5), core.NewVec3(0, 0, 1))
	color, _ := pt.RayColor(ray, s, sampler)
	if color != s.Background {
		t.Errorf("escaping ray should return the background, got %v", color)
	}
}

func TestSpecularScene_FiniteRadiance(t *testing.T) {
	s, ok := scene.NewScene(scene.SceneCornellSpecular, testConfig())
	if !ok {
		t.Fatal("specular cornell scene should exist")
	}
	pt := NewPathTracer(s.SamplingConfig)
	sampler := core.NewSeededSampler(5)

	for i := 0; i < 64; i++ {
		ray := s.Camera.GetRay(16+i%32, 16+i/2, sampler.Get2D())
		color, _ := pt.RayColor(ray, s, sampler)
		if !color.IsFinite() {
			t.Fatalf("specular path returned non-finite color: %v", color)
		}
	}
}

func TestNew_IntegratorFactory(t *testing.T) {
	config := testConfig()
	if _, ok := New("pt", config); !ok {
		t.Error("pt should be a known integrator")
	}
	if _, ok := New("bdpt", config); !ok {
		t.Error("bdpt should be a known integrator")
	}
	if _, ok := New("mlt", config); ok {
		t.Error("unknown integrator name should fail")
	}
}

func TestPathTracer_CornellConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence check needs many samples")
	}
	s := testCornell(t)
	pt := NewPathTracer(s.SamplingConfig)
	sampler := core.NewSeededSampler(11)

	batchMean := func(n int) float64 {
		sum := 0.0
		for i := 0; i < n; i++ {
			ray := s.Camera.GetRay(32, 32, sampler.Get2D())
			color, _ := pt.RayColor(ray, s, sampler)
			sum += color.Luminance()
		}
		return sum / float64(n)
	}
	stats := func(xs []float64) (mean, variance float64) {
		for _, x := range xs {
			mean += x
		}
		mean /= float64(len(xs))
		for _, x := range xs {
			d := x - mean
			variance += d * d
		}
		variance /= float64(len(xs) - 1)
		return mean, variance
	}

	const batches = 32
	small := make([]float64, batches)
	large := make([]float64, batches)
	for i := range small {
		small[i] = batchMean(16)
	}
	for i := range large {
		large[i] = batchMean(512)
	}

	meanSmall, varSmall := stats(small)
	meanLarge, varLarge := stats(large)

	if meanLarge <= 0 {
		t.Fatalf("converged estimate should be positive, got %v", meanLarge)
	}
	// 32x more samples per batch should cut the spread of the batch
	// means well below the small-batch spread
	if varLarge >= varSmall/4 {
		t.Errorf("batch mean variance did not shrink: %v samples/batch gives %v, %v samples/batch gives %v",
			16, varSmall, 512, varLarge)
	}
	// The two estimates target the same pixel radiance
	tolerance := 4 * math.Sqrt(varSmall/batches+varLarge/batches)
	if math.Abs(meanLarge-meanSmall) > tolerance {
		t.Errorf("estimates disagree: %v from small batches, %v from large batches (tolerance %v)",
			meanSmall, meanLarge, tolerance)
	}
}

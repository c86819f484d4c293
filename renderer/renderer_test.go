package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autumn3d/core"
	"autumn3d/gpu/gputest"
	"autumn3d/internal/config"
	"autumn3d/math"
	"autumn3d/scene"
)

type fakePlatform struct {
	openErr       error
	width, height int
	pressed       map[core.Key]bool
	closed        bool
	// closeAfter requests close once this many frames were presented; 0 never.
	closeAfter int
	now, step  float64
	swaps      int
	polls      int
	destroyed  int
	input      core.InputHandler
	calls      *[]string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{width: 800, height: 600, pressed: make(map[core.Key]bool), step: 0.5}
}

func (p *fakePlatform) Open(_ string, width, height int, _ bool, input core.InputHandler) error {
	if p.openErr != nil {
		return p.openErr
	}
	p.width, p.height = width, height
	p.input = input
	return nil
}

func (p *fakePlatform) FramebufferSize() (int, int)  { return p.width, p.height }
func (p *fakePlatform) KeyPressed(key core.Key) bool { return p.pressed[key] }
func (p *fakePlatform) ShouldClose() bool            { return p.closed }
func (p *fakePlatform) SetShouldClose(v bool)        { p.closed = v }
func (p *fakePlatform) Destroy()                     { p.destroyed++ }

func (p *fakePlatform) Time() float64 {
	t := p.now
	p.now += p.step
	return t
}

func (p *fakePlatform) SwapBuffers() {
	p.swaps++
	p.trace("swap")
	if p.closeAfter > 0 && p.swaps >= p.closeAfter {
		p.closed = true
	}
}

func (p *fakePlatform) PollEvents() {
	p.polls++
	p.trace("poll")
}

func (p *fakePlatform) trace(call string) {
	if p.calls != nil {
		*p.calls = append(*p.calls, call)
	}
}

// resize simulates a framebuffer resize event delivered by the window.
func (p *fakePlatform) resize(width, height int) {
	p.width, p.height = width, height
	p.input.OnFramebufferResize(width, height)
}

func indexedMesh(name string) *scene.Mesh {
	return &scene.Mesh{Name: name, Vertices: make([]core.Vertex, 4), Indices: []uint32{0, 1, 2, 2, 1, 3}}
}

func image1x1(name string) scene.Image {
	return scene.Image{Name: name, Width: 1, Height: 1, Pixels: make([]byte, 4)}
}

// running returns a renderer that has gone through window and device
// setup and entered the loop.
func running(t *testing.T, models ...*scene.Model) (*Renderer, *fakePlatform, *gputest.Device) {
	t.Helper()
	p := newFakePlatform()
	dev := gputest.New()
	p.calls = &dev.Calls

	r := New(p, config.Default())
	require.NoError(t, r.CreateWindow())
	require.NoError(t, r.InitDevice(dev))
	for _, m := range models {
		_, err := r.LoadModel(m)
		require.NoError(t, err)
	}
	require.NoError(t, r.Start())
	return r, p, dev
}

func TestSamplerNames(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  []string
	}{
		{"diffuse numbered", []string{"texture_diffuse", "texture_diffuse"}, []string{"texture_diffuse1", "texture_diffuse2"}},
		{"others always one", []string{"texture_specular", "texture_normal"}, []string{"texture_specular1", "texture_normal1"}},
		{"same type aliases", []string{"texture_specular", "texture_diffuse", "texture_specular"}, []string{"texture_specular1", "texture_diffuse1", "texture_specular1"}},
		{"none", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			textures := make([]scene.Texture, len(tt.types))
			for i, typ := range tt.types {
				textures[i] = scene.Texture{Handle: uint32(i + 1), Type: typ}
			}
			assert.Equal(t, tt.want, SamplerNames(textures))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "device-initialized", DeviceInitialized.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestLifecycleOrder(t *testing.T) {
	p := newFakePlatform()
	dev := gputest.New()
	r := New(p, nil)
	assert.Equal(t, Uninitialized, r.State())

	// every step requires the previous one
	assert.ErrorIs(t, r.InitDevice(dev), core.ErrInvalidState)
	assert.ErrorIs(t, r.Start(), core.ErrInvalidState)
	assert.ErrorIs(t, r.Frame(), core.ErrInvalidState)
	_, err := r.LoadModel(&scene.Model{})
	assert.ErrorIs(t, err, core.ErrInvalidState)

	require.NoError(t, r.CreateWindow())
	assert.Equal(t, WindowCreated, r.State())
	assert.ErrorIs(t, r.CreateWindow(), core.ErrInvalidState)
	assert.ErrorIs(t, r.Start(), core.ErrInvalidState)

	require.NoError(t, r.InitDevice(dev))
	assert.Equal(t, DeviceInitialized, r.State())
	assert.ErrorIs(t, r.Frame(), core.ErrInvalidState)

	require.NoError(t, r.Start())
	assert.Equal(t, Running, r.State())
	require.NoError(t, r.Frame())

	r.Terminate()
	assert.Equal(t, Terminated, r.State())
	assert.ErrorIs(t, r.Frame(), core.ErrInvalidState)
	assert.ErrorIs(t, r.Start(), core.ErrInvalidState)

	r.Terminate()
	assert.Equal(t, 1, p.destroyed)
}

func TestCreateWindowFailure(t *testing.T) {
	p := newFakePlatform()
	p.openErr = errors.New("no display")
	r := New(p, nil)

	err := r.CreateWindow()
	var de *core.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "create window", de.Op)
	assert.Equal(t, Uninitialized, r.State())
}

func TestInitDeviceCompileFailure(t *testing.T) {
	p := newFakePlatform()
	dev := gputest.New()
	dev.FailProgram = errors.New("syntax error")
	r := New(p, nil)
	require.NoError(t, r.CreateWindow())

	err := r.InitDevice(dev)
	assert.ErrorContains(t, err, "syntax error")
	assert.Equal(t, WindowCreated, r.State())
}

func TestFrameSequence(t *testing.T) {
	r, p, dev := running(t, &scene.Model{Meshes: []*scene.Mesh{indexedMesh("a")}})

	dev.Calls = nil
	require.NoError(t, r.Frame())

	assert.Equal(t, []string{"clear", "use", "draw", "swap", "poll"}, dev.Calls)
	assert.Equal(t, core.ColorCharcoal, dev.Clears[0])
	assert.Equal(t, dev.Program, dev.InUse)
	assert.Equal(t, 1, p.polls)
}

func TestFrameUploadsMatrices(t *testing.T) {
	r, _, dev := running(t, &scene.Model{Meshes: []*scene.Mesh{indexedMesh("a")}})
	require.NoError(t, r.Frame())

	cam := r.Camera()
	assert.Equal(t, cam.ProjectionMatrix(800, 600), dev.Mat4s[UniformProjection])
	assert.Equal(t, cam.ViewMatrix(), dev.Mat4s[UniformView])
	assert.Equal(t, math.Mat4Scale(math.Splat3(0.5)), dev.Mat4s[UniformModel])
}

func TestProjectionFollowsResize(t *testing.T) {
	r, p, dev := running(t)
	require.NoError(t, r.Frame())

	sizes := [][2]int{{1000, 250}, {300, 900}, {640, 0}}
	for _, s := range sizes {
		p.resize(s[0], s[1])
		require.NoError(t, r.Frame())

		assert.Equal(t, r.Camera().ProjectionMatrix(s[0], s[1]), dev.Mat4s[UniformProjection])
		assert.Equal(t, s, dev.Viewports[len(dev.Viewports)-1])
	}

	w, h := r.Viewport()
	assert.Equal(t, 640, w)
	assert.Equal(t, 0, h)
}

func TestDrawPathsAndTextureUnits(t *testing.T) {
	textured := indexedMesh("textured")
	textured.Images = []int{0, 1}
	flat := &scene.Mesh{Name: "flat", Vertices: make([]core.Vertex, 3)}
	model := &scene.Model{
		Meshes: []*scene.Mesh{textured, flat},
		Images: []scene.Image{image1x1("a"), image1x1("b")},
	}
	r, _, dev := running(t, model)

	require.NoError(t, r.Frame())
	require.Len(t, dev.Draws, 2)

	first := dev.Draws[0]
	assert.True(t, first.Indexed)
	assert.Equal(t, 6, first.Count)
	assert.Equal(t, textured.Textures[0].Handle, first.Textures[0])
	assert.Equal(t, textured.Textures[1].Handle, first.Textures[1])
	assert.Equal(t, int32(0), dev.Ints["texture_diffuse1"])
	assert.Equal(t, int32(1), dev.Ints["texture_diffuse2"])

	second := dev.Draws[1]
	assert.False(t, second.Indexed)
	assert.Equal(t, 3, second.Count)
	assert.Equal(t, flat.GPU.VAO, second.VAO)
	assert.Zero(t, second.Textures[0], "untextured mesh samples no texture")
	assert.Equal(t, textured.Textures[1].Handle, second.Textures[1])
}

func TestMissingSamplerUniformFailsOnlyThatMesh(t *testing.T) {
	twoTex := indexedMesh("two")
	twoTex.Images = []int{0, 1}
	plain := indexedMesh("plain")
	model := &scene.Model{
		Meshes: []*scene.Mesh{twoTex, plain},
		Images: []scene.Image{image1x1("a"), image1x1("b")},
	}

	p := newFakePlatform()
	dev := gputest.New()
	dev.Uniforms = []string{UniformProjection, UniformView, UniformModel, "texture_diffuse1"}
	r := New(p, nil)
	require.NoError(t, r.CreateWindow())
	require.NoError(t, r.InitDevice(dev))
	_, err := r.LoadModel(model)
	require.NoError(t, err)
	require.NoError(t, r.Start())

	err = r.Frame()
	require.ErrorIs(t, err, core.ErrMissingUniform)
	var de *core.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "two", de.Mesh)
	assert.ErrorContains(t, err, "texture_diffuse2")

	// the other mesh still drew and the frame was presented
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, plain.GPU.VAO, dev.Draws[0].VAO)
	assert.Equal(t, 1, p.swaps)
}

func TestMissingMatrixUniform(t *testing.T) {
	p := newFakePlatform()
	dev := gputest.New()
	dev.Uniforms = []string{UniformView, UniformModel}
	r := New(p, nil)
	require.NoError(t, r.CreateWindow())
	require.NoError(t, r.InitDevice(dev))
	require.NoError(t, r.Start())

	err := r.Frame()
	assert.ErrorIs(t, err, core.ErrMissingUniform)
	assert.ErrorContains(t, err, UniformProjection)
}

func TestKeyboardInput(t *testing.T) {
	r, p, _ := running(t)
	start := r.Camera().Position

	p.pressed[core.KeyW] = true
	require.NoError(t, r.Frame())

	// one step of 0.5s at speed 2.5 along -Z
	got := r.Camera().Position
	assert.InDelta(t, start.Z-1.25, got.Z, 1e-5)
	assert.InDelta(t, start.X, got.X, 1e-5)
	assert.False(t, p.ShouldClose())

	p.pressed[core.KeyW] = false
	p.pressed[core.KeyEscape] = true
	require.NoError(t, r.Frame())
	assert.True(t, p.ShouldClose())
}

func TestMoveInvalidDirectionIgnored(t *testing.T) {
	r := New(newFakePlatform(), nil)
	before := r.Camera().Position

	r.Move(core.Direction(-1), 1)
	assert.Equal(t, before, r.Camera().Position)
}

func TestCursorFirstSampleDoesNotJump(t *testing.T) {
	r := New(newFakePlatform(), nil)
	cam := r.Camera()
	cam.MouseSensitivity = 1

	r.OnCursorMove(400, 300)
	assert.Equal(t, float32(-90), cam.Yaw())
	assert.Equal(t, float32(0), cam.Pitch())

	// moving up the screen pitches up
	r.OnCursorMove(410, 280)
	assert.Equal(t, float32(-80), cam.Yaw())
	assert.Equal(t, float32(20), cam.Pitch())
}

func TestScrollZooms(t *testing.T) {
	r := New(newFakePlatform(), nil)

	r.OnScroll(0, 10)
	assert.Equal(t, float32(35), r.Camera().Zoom())
}

func TestRunReleasesResources(t *testing.T) {
	model := &scene.Model{
		Meshes: []*scene.Mesh{indexedMesh("a")},
		Images: []scene.Image{image1x1("a")},
	}
	model.Meshes[0].Images = []int{0}

	p := newFakePlatform()
	p.closeAfter = 3
	dev := gputest.New()
	r := New(p, nil)
	require.NoError(t, r.CreateWindow())
	require.NoError(t, r.InitDevice(dev))
	idx, err := r.LoadModel(model)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Same(t, model, r.models[idx])

	require.NoError(t, r.Run())

	assert.Equal(t, 3, p.swaps)
	assert.Len(t, dev.Draws, 3)
	assert.Equal(t, Terminated, r.State())
	assert.Equal(t, 1, p.destroyed)
	assert.Zero(t, dev.Live())
}

func TestRunLogsDrawErrorsAndContinues(t *testing.T) {
	broken := indexedMesh("broken")
	broken.Images = []int{0}
	model := &scene.Model{Meshes: []*scene.Mesh{broken}, Images: []scene.Image{image1x1("a")}}

	p := newFakePlatform()
	p.closeAfter = 4
	dev := gputest.New()
	dev.Uniforms = []string{UniformProjection, UniformView, UniformModel}
	r := New(p, nil)
	require.NoError(t, r.CreateWindow())
	require.NoError(t, r.InitDevice(dev))
	_, err := r.LoadModel(model)
	require.NoError(t, err)

	require.NoError(t, r.Run())
	assert.Equal(t, 4, p.swaps)
	assert.Len(t, r.reported, 1)
}

func TestCameraFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Position = [3]float32{1, 2, 3}
	cfg.Camera.Speed = 7
	cfg.Camera.Zoom = 30

	cam := New(newFakePlatform(), cfg).Camera()
	assert.Equal(t, math.NewVec3(1, 2, 3), cam.Position)
	assert.Equal(t, float32(7), cam.MovementSpeed)
	assert.Equal(t, float32(30), cam.Zoom())
}

package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"autumn3d/core"
	"autumn3d/gpu"
	"autumn3d/internal/config"
	"autumn3d/internal/logger"
	"autumn3d/math"
	"autumn3d/scene"
)

// ModelScale is applied uniformly to every model.
const ModelScale = 0.5

var keyBindings = []struct {
	key core.Key
	dir core.Direction
}{
	{core.KeyW, core.Forward},
	{core.KeyS, core.Backward},
	{core.KeyA, core.Left},
	{core.KeyD, core.Right},
}

// Renderer owns the window, the device, the camera and every loaded model,
// and runs the frame loop. It is not safe for concurrent use: every method
// must be called from the thread that owns the graphics context.
type Renderer struct {
	cfg      *config.Config
	platform Platform
	dev      gpu.Device
	uploader *gpu.Uploader
	log      *zap.Logger

	state   State
	program uint32
	// uniforms caches locations of the current program; -1 is cached too.
	uniforms map[string]int32

	camera *scene.Camera
	models []*scene.Model

	width, height int
	clearColor    core.Color
	lastFrame     float64

	firstMouse   bool
	lastX, lastY float64

	// reported holds draw errors already logged, so each is logged once.
	reported map[string]bool
}

// New returns an Uninitialized renderer on the given platform.
func New(platform Platform, cfg *config.Config) *Renderer {
	if cfg == nil {
		cfg = config.Default()
	}
	c := cfg.Camera
	cam := scene.NewCamera(math.NewVec3(c.Position[0], c.Position[1], c.Position[2]))
	cam.MovementSpeed = c.Speed
	cam.MouseSensitivity = c.Sensitivity
	cam.SetZoom(c.Zoom)

	cc := cfg.Render.ClearColor
	return &Renderer{
		cfg:        cfg,
		platform:   platform,
		log:        logger.Named("renderer"),
		state:      Uninitialized,
		uniforms:   make(map[string]int32),
		camera:     cam,
		width:      cfg.Window.Width,
		height:     cfg.Window.Height,
		clearColor: core.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]},
		firstMouse: true,
		reported:   make(map[string]bool),
	}
}

func (r *Renderer) State() State          { return r.state }
func (r *Renderer) Camera() *scene.Camera { return r.camera }
func (r *Renderer) Viewport() (int, int)  { return r.width, r.height }

func (r *Renderer) transition(from, to State) error {
	if r.state != from {
		return &core.DeviceError{Op: to.String(),
			Err: fmt.Errorf("%w: renderer is %s, want %s", core.ErrInvalidState, r.state, from)}
	}
	r.log.Info("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	r.state = to
	return nil
}

// CreateWindow opens the platform window. The renderer registers itself as
// the window's input handler.
func (r *Renderer) CreateWindow() error {
	if r.state != Uninitialized {
		return r.transition(Uninitialized, WindowCreated)
	}
	w := r.cfg.Window
	if err := r.platform.Open(w.Title, w.Width, w.Height, w.VSync, r); err != nil {
		return &core.DeviceError{Op: "create window", Err: err}
	}
	r.width, r.height = r.platform.FramebufferSize()
	return r.transition(Uninitialized, WindowCreated)
}

// InitDevice compiles the model program on dev. dev must belong to the
// context created by CreateWindow.
func (r *Renderer) InitDevice(dev gpu.Device) error {
	if r.state != WindowCreated {
		return r.transition(WindowCreated, DeviceInitialized)
	}
	program, err := dev.CompileProgram(ModelVertexShader, ModelFragmentShader)
	if err != nil {
		return &core.DeviceError{Op: "compile program", Err: err}
	}
	r.dev = dev
	r.uploader = gpu.NewUploader(dev)
	r.program = program
	r.dev.Viewport(r.width, r.height)
	return r.transition(WindowCreated, DeviceInitialized)
}

// LoadModel uploads an imported model and adds it to the model arena.
// The returned index addresses the model for the renderer's lifetime.
func (r *Renderer) LoadModel(model *scene.Model) (int, error) {
	if r.state != DeviceInitialized && r.state != Running {
		return -1, &core.DeviceError{Op: "load model",
			Err: fmt.Errorf("%w: renderer is %s", core.ErrInvalidState, r.state)}
	}
	if err := r.uploader.UploadModel(model); err != nil {
		return -1, err
	}
	r.models = append(r.models, model)
	r.log.Info("model loaded",
		zap.Int("index", len(r.models)-1),
		zap.String("directory", model.Directory),
		zap.Int("meshes", len(model.Meshes)),
	)
	return len(r.models) - 1, nil
}

// Start enters the Running state and resets the frame clock.
func (r *Renderer) Start() error {
	if err := r.transition(DeviceInitialized, Running); err != nil {
		return err
	}
	r.lastFrame = r.platform.Time()
	return nil
}

// Run starts the loop and renders frames until the window is asked to
// close, then releases every resource. Draw errors do not stop the loop;
// each distinct one is logged once.
func (r *Renderer) Run() error {
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Terminate()

	frames := 0
	for !r.platform.ShouldClose() {
		if err := r.Frame(); err != nil {
			r.report(err)
		}
		frames++
	}
	r.log.Info("render loop finished", zap.Int("frames", frames))
	return nil
}

func (r *Renderer) report(err error) {
	for _, e := range unjoin(err) {
		msg := e.Error()
		if r.reported[msg] {
			continue
		}
		r.reported[msg] = true
		r.log.Error("draw failed", zap.Error(e))
	}
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Frame renders one frame: timing, input, clear, program, camera
// matrices, models, present, events. A mesh that fails to draw does not
// stop the others; all failures are returned joined.
func (r *Renderer) Frame() error {
	if r.state != Running {
		return &core.DeviceError{Op: "frame",
			Err: fmt.Errorf("%w: renderer is %s", core.ErrInvalidState, r.state)}
	}

	now := r.platform.Time()
	dt := float32(now - r.lastFrame)
	r.lastFrame = now

	r.processInput(dt)

	r.dev.Clear(r.clearColor)
	r.dev.UseProgram(r.program)

	var errs []error
	if err := r.setMat4(UniformProjection, r.camera.ProjectionMatrix(r.width, r.height)); err != nil {
		errs = append(errs, err)
	}
	if err := r.setMat4(UniformView, r.camera.ViewMatrix()); err != nil {
		errs = append(errs, err)
	}

	modelMatrix := math.Mat4Scale(math.Splat3(ModelScale))
	for _, model := range r.models {
		if err := r.setMat4(UniformModel, modelMatrix); err != nil {
			errs = append(errs, err)
		}
		for _, mesh := range model.Meshes {
			if err := r.drawMesh(mesh); err != nil {
				errs = append(errs, err)
			}
		}
	}

	r.platform.SwapBuffers()
	r.platform.PollEvents()
	return errors.Join(errs...)
}

func (r *Renderer) processInput(dt float32) {
	if r.platform.KeyPressed(core.KeyEscape) {
		r.platform.SetShouldClose(true)
	}
	for _, b := range keyBindings {
		if r.platform.KeyPressed(b.key) {
			r.Move(b.dir, dt)
		}
	}
}

// Move moves the camera. An unknown direction is logged and ignored.
func (r *Renderer) Move(dir core.Direction, dt float32) {
	if err := r.camera.ProcessKeyboard(dir, dt); err != nil {
		r.log.Warn("camera movement ignored", zap.Error(err))
	}
}

func (r *Renderer) uniform(name string) int32 {
	loc, ok := r.uniforms[name]
	if !ok {
		loc = r.dev.UniformLocation(r.program, name)
		r.uniforms[name] = loc
	}
	return loc
}

func (r *Renderer) setMat4(name string, m math.Mat4) error {
	loc := r.uniform(name)
	if loc < 0 {
		return &core.DeviceError{Op: "draw", Err: fmt.Errorf("%w: %s", core.ErrMissingUniform, name)}
	}
	r.dev.UniformMat4(loc, m)
	return nil
}

// drawMesh binds the mesh's textures to units 0..n-1 in upload order and
// issues its draw call.
func (r *Renderer) drawMesh(mesh *scene.Mesh) error {
	if !mesh.GPU.Uploaded() {
		return &core.DeviceError{Op: "draw", Mesh: mesh.Name,
			Err: fmt.Errorf("%w: mesh not uploaded", core.ErrInvalidState)}
	}

	for unit, name := range SamplerNames(mesh.Textures) {
		loc := r.uniform(name)
		if loc < 0 {
			return &core.DeviceError{Op: "draw", Mesh: mesh.Name,
				Err: fmt.Errorf("%w: %s", core.ErrMissingUniform, name)}
		}
		r.dev.Uniform1i(loc, int32(unit))
		r.dev.BindTexture(unit, mesh.Textures[unit].Handle)
	}
	if len(mesh.Textures) == 0 {
		// unit 0 may still hold the previous mesh's texture
		r.dev.BindTexture(0, 0)
	}

	if mesh.Indexed() {
		r.dev.DrawElements(mesh.GPU.VAO, len(mesh.Indices))
	} else {
		r.dev.DrawArrays(mesh.GPU.VAO, len(mesh.Vertices))
	}
	return nil
}

// Terminate releases every model, the program and the window. No frame
// can run afterwards. Safe to call in any state and more than once.
func (r *Renderer) Terminate() {
	if r.state == Terminated {
		return
	}
	if r.uploader != nil {
		for _, model := range r.models {
			r.uploader.ReleaseModel(model)
		}
	}
	if r.dev != nil && r.program != 0 {
		r.dev.DeleteProgram(r.program)
		r.program = 0
	}
	if r.state != Uninitialized {
		r.platform.Destroy()
	}
	r.log.Info("state changed", zap.Stringer("from", r.state), zap.Stringer("to", Terminated))
	r.state = Terminated
}

// OnFramebufferResize keeps the viewport and the next projection in step
// with the framebuffer.
func (r *Renderer) OnFramebufferResize(width, height int) {
	r.width, r.height = width, height
	if r.dev != nil {
		r.dev.Viewport(width, height)
	}
	r.log.Debug("framebuffer resized", zap.Int("width", width), zap.Int("height", height))
}

// OnCursorMove turns the camera by the cursor delta. The first sample only
// records the position.
func (r *Renderer) OnCursorMove(x, y float64) {
	if r.firstMouse {
		r.lastX, r.lastY = x, y
		r.firstMouse = false
	}
	xoffset := float32(x - r.lastX)
	// screen y grows downward
	yoffset := float32(r.lastY - y)
	r.lastX, r.lastY = x, y

	r.camera.ProcessMouseMovement(xoffset, yoffset, true)
}

func (r *Renderer) OnScroll(_, yoffset float64) {
	r.camera.ProcessMouseScroll(float32(yoffset))
}

var _ core.InputHandler = (*Renderer)(nil)

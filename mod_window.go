package tavern

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the shared GLFW window plus the current OpenGL context.
// Exactly one instance exists per App; every renderer and input module
// resolves it as a resource.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// WindowModule creates the GLFW window with an OpenGL 4.1 core context and
// installs WindowState. Install is idempotent: an existing WindowState
// resource is reused to preserve the single-window invariant.
type WindowModule struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

func NewWindow(width, height int, title string) *WindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Tavern"
	}
	return &WindowModule{Width: width, Height: height, Title: title, VSync: true}
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if Resource[WindowState](app) != nil {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title, m.VSync)
	if err != nil {
		panic(err)
	}
	app.addResources(ws)
	app.Logger().Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	app.UseSystem(System(presentSystem).InStage(Finale))
}

func createWindowState(width, height int, title string, vsync bool) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	}

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  width,
		WindowHeight: height,
		windowTitle:  title,
	}, nil
}

// presentSystem swaps buffers at the end of the frame and requests shutdown
// once the user closes the window.
func presentSystem(s *WindowState, cmd *Commands) {
	s.windowGlfw.SwapBuffers()
	if s.windowGlfw.ShouldClose() {
		cmd.Quit()
	}
}

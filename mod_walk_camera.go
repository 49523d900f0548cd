package tavern

// WalkCameraModule drives the shared Camera resource from keyboard and mouse
// input: WASD walks along the camera basis, the mouse steers yaw/pitch while
// the cursor is captured, space/control rise and crouch.
type WalkCameraModule struct{}

func (m WalkCameraModule) Install(app *App, cmd *Commands) {
	if Resource[Camera](app) == nil {
		cmd.AddResources(NewCamera())
	}
	app.UseSystem(System(walkCameraSystem).InStage(Update))
}

func walkCameraSystem(cam *Camera, input *Input, time *Time) {
	dt := float32(time.Dt.Seconds())
	if dt <= 0 {
		return
	}

	if input.MouseCaptured {
		// Screen Y grows downward, pitch grows upward.
		cam.Rotate(float32(input.MouseDeltaX), -float32(input.MouseDeltaY))
	}

	var x, y, z float32
	if input.Pressed[KeyW] {
		z += 1
	}
	if input.Pressed[KeyS] {
		z -= 1
	}
	if input.Pressed[KeyA] {
		x -= 1
	}
	if input.Pressed[KeyD] {
		x += 1
	}
	if input.Pressed[KeySpace] {
		y += 1
	}
	if input.Pressed[KeyControl] {
		y -= 1
	}

	step := cam.Speed * dt
	cam.Move(x*step, y*step, z*step)
}

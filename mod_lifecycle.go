package lightpass

const (
	StateLoading State = iota
	StateRunning
	StateExiting
)

// LifecycleModule watches the window and tears the app down in StateExiting:
// timing is reported on entry and the device and window are released on exit.
type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(closeRequestSystem).
			InStage(Finale).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(reportSystem).
			InStage(Finale).
			InState(OnEnter(StateExiting)),
	)
	app.UseSystem(
		System(shutdownSystem).
			InStage(Finale).
			InState(OnExit(StateExiting)),
	)
}

func closeRequestSystem(ws *WindowState, cmd *Commands) {
	if ws.ShouldClose() {
		cmd.ChangeState(StateExiting)
	}
}

func reportSystem(clock *Clock, profiler *Profiler, cmd *Commands) {
	clock.Stop()
	log := cmd.Logger()
	clock.ReportTimingData(log)
	log.Infof("%s", profiler.GetStatsString())
}

func shutdownSystem(rc *RenderContext, ws *WindowState, cmd *Commands) {
	cmd.Logger().Debugf("releasing %s device", rc.Backend)
	rc.Release()
	ws.Destroy()
}

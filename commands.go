package lightpass

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Exit ends a stateless app after the current frame, or moves a stateful app to its
// final state.
func (cmd *Commands) Exit() {
	if cmd.app.stateful {
		if cmd.app.state != cmd.app.finalState {
			cmd.app.changeState(cmd.app.finalState)
		}
		return
	}
	cmd.app.exitRequested = true
}

func (cmd *Commands) State() State {
	return cmd.app.state
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

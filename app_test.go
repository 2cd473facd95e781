package lightpass

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	if app.nextState != State(2) {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	app.executeChangeState(2)
	if app.state != State(2) {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	_, ok = Resource[Config](app)
	assert.False(t, ok)
}

func TestApp_RunStatefulLifecycle(t *testing.T) {
	var trace []string
	frames := 0

	app := NewAppBuilder().UseStates(StateLoading, StateExiting).Build()
	app.addResources(NewMockResource1("counter"))

	app.UseSystem(System(func(cmd *Commands) {
		trace = append(trace, "load")
		cmd.ChangeState(StateRunning)
	}).InStage(Prelude).InState(OnEnter(StateLoading)))

	app.UseSystem(System(func(r *MockResource1, cmd *Commands) {
		frames++
		trace = append(trace, "frame:"+r.name)
		if frames == 3 {
			cmd.ChangeState(StateExiting)
		}
	}).InStage(Render).InState(OnExecute(StateRunning)))

	app.UseSystem(System(func() { trace = append(trace, "report") }).InStage(Finale).InState(OnEnter(StateExiting)))
	app.UseSystem(System(func() { trace = append(trace, "shutdown") }).InStage(Finale).InState(OnExit(StateExiting)))

	require.NoError(t, app.Run())
	assert.Equal(t, []string{"load", "frame:counter", "frame:counter", "frame:counter", "report", "shutdown"}, trace)
	assert.Equal(t, StateExiting, app.State())
}

func TestApp_RunStatelessExit(t *testing.T) {
	calls := 0
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(cmd *Commands) {
		calls++
		if calls == 2 {
			cmd.Exit()
		}
	}))

	require.NoError(t, app.Run())
	assert.Equal(t, 2, calls)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Panics(t, func() {
		app.callSystem(func(c *Config) {})
	})
}

func TestApp_UseSystemUnknownStage(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.PanicsWithValue(t, "Stage Nowhere doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nowhere"}))
	})
}

func TestApp_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	custom := Stage{Name: "Overlay"}
	app.UseStage(custom, AfterStage(Render))

	idx := -1
	for i, s := range app.stages {
		if s.Name == custom.Name {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, Render.Name, app.stages[idx-1].Name)
}

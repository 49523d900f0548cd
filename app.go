package tavern

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// App is the frame-loop host. Modules install resources and systems into it;
// Run then calls every system once per frame, grouped by stage, until a
// system requests shutdown through Commands.Quit.
type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	scene     *Scene
	quitting  bool

	shutdownFns []func()

	pendingAdditions []pendingAdd
	pendingRemovals  []EntityId
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

// Module is anything that can wire itself into the App.
type Module interface {
	Install(app *App, cmd *Commands)
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// UseSystem registers a scheduled system. Systems without an explicit stage
// land in Update.
func (app *App) UseSystem(sched systemScheduleBuilder) *App {
	stage := sched.inStage
	if stage.Name == "" {
		stage = Update
	}
	app.systems[stage.Name] = append(app.systems[stage.Name], sched.system)
	return app
}

// OnShutdown registers a cleanup function. Run calls them after the frame
// loop exits, most recently registered first, so resources tear down in
// reverse install order.
func (app *App) OnShutdown(fn func()) {
	app.shutdownFns = append(app.shutdownFns, fn)
}

// Run drives the frame loop until a system calls Commands.Quit, then runs
// the registered shutdown functions.
func (app *App) Run() {
	for !app.quitting {
		app.runFrame()
	}
	app.shutdown()
}

func (app *App) shutdown() {
	for i := len(app.shutdownFns) - 1; i >= 0; i-- {
		app.shutdownFns[i]()
	}
	app.shutdownFns = nil
}

// RunFrame executes a single frame. Exposed for callers that own their loop.
func (app *App) RunFrame() {
	app.runFrame()
}

// runFrame executes every stage in order and flushes buffered scene commands
// between stages, so a system never observes entities appearing mid-stage.
func (app *App) runFrame() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.flushCommands()
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the registered resource of type T, or nil.
func Resource[T any](app *App) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if r, ok := app.resources[t]; ok {
		return r.(*T)
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem invokes a system function, resolving each pointer parameter
// against the resource registry. *Commands is synthesized per call.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			panic(fmt.Sprintf(
				"unable to resolve system dependency\nsystem: %s\ndependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				argType,
			))
		}
	}
	systemValue.Call(args)
}

func (app *App) flushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 {
		return
	}

	// Removals first so we never resurrect components on dead entities.
	for _, eid := range app.pendingRemovals {
		app.scene.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.scene.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]
}

package tavern

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type MockModule2 struct {
	installed bool
	sawFirst  bool
}

func (m *MockModule2) Install(app *App, commands *Commands) {
	m.installed = true
	// Modules install in registration order, so resources added by earlier
	// modules are visible here.
	m.sawFirst = Resource[MockResource1](app) != nil
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
}

func TestAppBuilder_BuildInstallsModules(t *testing.T) {
	mockModule := &MockModule{}
	mockModule2 := &MockModule2{}

	app := NewAppBuilder().
		UseModule(mockModule, mockModule2).
		Build()

	if !mockModule.installed {
		t.Errorf("Expected first module to be installed")
	}
	if !mockModule2.installed {
		t.Errorf("Expected second module to be installed")
	}
	if len(app.modules) != 2 {
		t.Errorf("Expected app to keep 2 modules, got %v", len(app.modules))
	}
}

type resourceModule struct{}

func (m resourceModule) Install(app *App, commands *Commands) {
	commands.AddResources(NewMockResource1("from module"))
}

func TestAppBuilder_ModuleInstallOrder(t *testing.T) {
	second := &MockModule2{}
	NewAppBuilder().
		UseModule(resourceModule{}, second).
		Build()

	if !second.sawFirst {
		t.Errorf("Expected the second module to see the first module's resource")
	}
}

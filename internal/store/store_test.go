package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiirun/simplrtask/internal/activity"
	"github.com/baiirun/simplrtask/internal/model"
	"github.com/baiirun/simplrtask/internal/storage"
)

var start = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func setupTestStore(t *testing.T) (*Store, *storage.MemoryMedium) {
	t.Helper()
	medium := storage.NewMemoryMedium()
	s := New(storage.NewAdapter(medium, nil), WithClock(stepClock()))
	return s, medium
}

func version(t *testing.T, m *storage.MemoryMedium) int64 {
	t.Helper()
	v, err := m.Version(storage.AppDataKey)
	require.NoError(t, err)
	return v
}

// reopen loads the persisted document through a fresh adapter.
func reopen(m *storage.MemoryMedium) *model.AppData {
	return storage.NewAdapter(m, nil).Load()
}

func TestNew_StartsWithDefaultProject(t *testing.T) {
	s, _ := setupTestStore(t)

	p, ok := s.ActiveProject()
	require.True(t, ok)
	assert.Equal(t, model.DefaultProjectName, p.Name)
	assert.Empty(t, p.Tasks)
	assert.Equal(t, model.DefaultSettings(), s.Settings())
}

func TestCreateTask(t *testing.T) {
	s, medium := setupTestStore(t)

	first, ok := s.CreateTask("Buy milk")
	require.True(t, ok)
	second, ok := s.CreateTask("  Write report  ")
	require.True(t, ok)

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, second, tasks[0].ID, "newest task first")
	assert.Equal(t, "Write report", tasks[0].Content)
	assert.Equal(t, model.StatusPending, tasks[1].Status)
	assert.Equal(t, "Buy milk", tasks[1].Content)
	assert.Empty(t, tasks[1].Modifications)
	assert.NotNil(t, tasks[1].Modifications)

	log := s.Activity()
	require.Len(t, log, 2)
	assert.Equal(t, model.ActivityCreated, log[0].Type)
	assert.Equal(t, second, log[0].TaskID)
	assert.Equal(t, "Buy milk", log[1].TaskContent)
	assert.True(t, log[1].Timestamp.Equal(tasks[1].CreatedAt))

	persisted := reopen(medium).ActiveProject()
	require.NotNil(t, persisted)
	assert.Equal(t, first, persisted.Tasks[1].ID)
}

func TestCreateTask_NoOps(t *testing.T) {
	s, medium := setupTestStore(t)
	before := version(t, medium)

	_, ok := s.CreateTask("   ")
	assert.False(t, ok)

	s.SetActiveProject("")
	afterSwitch := version(t, medium)
	_, ok = s.CreateTask("orphan")
	assert.False(t, ok)

	assert.Equal(t, before+1, afterSwitch)
	assert.Equal(t, afterSwitch, version(t, medium))
}

func TestUpdateTask(t *testing.T) {
	s, medium := setupTestStore(t)
	id, _ := s.CreateTask("draft")

	before := version(t, medium)
	assert.False(t, s.UpdateTask(id, "draft"), "unchanged content")
	assert.False(t, s.UpdateTask(id, " "), "blank content")
	assert.False(t, s.UpdateTask("task-missing", "x"), "unknown task")
	assert.Equal(t, before, version(t, medium))

	require.True(t, s.UpdateTask(id, "final"))

	task, ok := s.Task(id)
	require.True(t, ok)
	assert.Equal(t, "final", task.Content)
	require.Len(t, task.Modifications, 1)
	mod := task.Modifications[0]
	assert.Equal(t, model.ModificationContent, mod.Type)
	assert.Equal(t, "draft", mod.From)
	assert.Equal(t, "final", mod.To)
	assert.Equal(t, id, mod.TaskID)

	log := s.Activity()
	require.Len(t, log, 2)
	assert.Equal(t, model.ActivityContent, log[0].Type)
	assert.Equal(t, "final", log[0].TaskContent)
	assert.Equal(t, "draft", log[0].From)
	assert.Equal(t, before+1, version(t, medium))
}

func TestUpdateTaskStatus(t *testing.T) {
	s, medium := setupTestStore(t)
	id, _ := s.CreateTask("ship it")

	before := version(t, medium)
	assert.False(t, s.UpdateTaskStatus(id, model.StatusPending), "unchanged status")
	assert.False(t, s.UpdateTaskStatus(id, "Blocked"), "invalid status")
	assert.False(t, s.UpdateTaskStatus("task-missing", model.StatusDone), "unknown task")
	assert.Equal(t, before, version(t, medium))

	require.True(t, s.UpdateTaskStatus(id, model.StatusInProgress))
	require.True(t, s.UpdateTaskStatus(id, model.StatusDone))

	task, _ := s.Task(id)
	assert.Equal(t, model.StatusDone, task.Status)
	require.Len(t, task.Modifications, 2)
	assert.Equal(t, "En proceso", task.Modifications[0].From)
	assert.Equal(t, "Listo", task.Modifications[0].To)
	assert.Equal(t, "Pendiente", task.Modifications[1].From)

	log := s.Activity()
	require.Len(t, log, 3)
	assert.Equal(t, model.ActivityStatus, log[0].Type)
	assert.Equal(t, "Listo", log[0].To)
	assert.Equal(t, "ship it", log[0].TaskContent)
}

func TestRepeatedUpdatesAddNoHistory(t *testing.T) {
	s, _ := setupTestStore(t)
	id, _ := s.CreateTask("same")

	for i := 0; i < 3; i++ {
		s.UpdateTask(id, "same")
		s.UpdateTaskStatus(id, model.StatusPending)
	}

	task, _ := s.Task(id)
	assert.Empty(t, task.Modifications)
	assert.Len(t, s.Activity(), 1)
}

func TestDeleteTask_KeepsContentInActivity(t *testing.T) {
	s, medium := setupTestStore(t)
	id, _ := s.CreateTask("remember me")
	other, _ := s.CreateTask("stay")

	require.True(t, s.DeleteTask(id))

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, other, tasks[0].ID)

	log := s.Activity()
	assert.Equal(t, model.ActivityDeleted, log[0].Type)
	assert.Equal(t, "remember me", log[0].TaskContent)
	assert.Equal(t, id, log[0].TaskID)

	before := version(t, medium)
	assert.False(t, s.DeleteTask(id))
	assert.Equal(t, before, version(t, medium))
}

func TestClearCompletedTasks(t *testing.T) {
	s, _ := setupTestStore(t)
	a, _ := s.CreateTask("A")
	b, _ := s.CreateTask("B")
	s.UpdateTaskStatus(a, model.StatusDone)
	activityBefore := len(s.Activity())

	removed := s.ClearCompletedTasks()

	assert.Equal(t, 1, removed)
	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, b, tasks[0].ID)

	log := s.Activity()
	require.Len(t, log, activityBefore+1)
	assert.Equal(t, model.ActivityReported, log[0].Type)
	assert.Equal(t, "A", log[0].TaskContent)
}

func TestClearCompletedTasks_Nothing(t *testing.T) {
	s, medium := setupTestStore(t)
	before := version(t, medium)

	assert.Equal(t, 0, s.ClearCompletedTasks())
	assert.Empty(t, s.Activity())

	s.CreateTask("pending")
	afterCreate := version(t, medium)
	assert.Equal(t, 0, s.ClearCompletedTasks())
	assert.Len(t, s.Activity(), 1)

	assert.Equal(t, before+1, afterCreate)
	assert.Equal(t, afterCreate, version(t, medium))
}

func TestCreateProject(t *testing.T) {
	s, _ := setupTestStore(t)
	active, _ := s.ActiveProject()

	_, ok := s.CreateProject("   ")
	assert.False(t, ok)

	id, ok := s.CreateProject(" Home ")
	require.True(t, ok)

	projects := s.Projects()
	require.Len(t, projects, 2)
	assert.Equal(t, id, projects[1].ID)
	assert.Equal(t, "Home", projects[1].Name)
	assert.NotNil(t, projects[1].Tasks)
	assert.NotNil(t, projects[1].Activity)

	still, _ := s.ActiveProject()
	assert.Equal(t, active.ID, still.ID, "creating a project does not switch to it")
}

func TestAddProject(t *testing.T) {
	s, _ := setupTestStore(t)

	id := s.AddProject()

	p, ok := s.ActiveProject()
	require.True(t, ok)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Project 2", p.Name)
}

func TestDeleteProject_ActiveMovesToFirst(t *testing.T) {
	s, _ := setupTestStore(t)
	first, _ := s.ActiveProject()
	second := s.AddProject()
	third := s.AddProject()
	s.SetActiveProject(second)

	require.True(t, s.DeleteProject(second))

	p, _ := s.ActiveProject()
	assert.Equal(t, first.ID, p.ID)

	s.SetActiveProject(third)
	require.True(t, s.DeleteProject(first.ID))
	p, _ = s.ActiveProject()
	assert.Equal(t, third, p.ID, "deleting an inactive project keeps the selection")

	assert.False(t, s.DeleteProject("project-missing"))
}

func TestDeleteProject_LastOneThenReload(t *testing.T) {
	s, medium := setupTestStore(t)
	p, _ := s.ActiveProject()

	require.True(t, s.DeleteProject(p.ID))

	assert.Empty(t, s.Projects())
	_, ok := s.ActiveProject()
	assert.False(t, ok)

	loaded := reopen(medium)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, model.DefaultProjectName, loaded.Projects[0].Name)
	assert.NotEqual(t, p.ID, loaded.Projects[0].ID)
	assert.Equal(t, loaded.Projects[0].ID, loaded.ActiveProjectID)
}

func TestSetActiveProject_DanglingRepairedOnLoad(t *testing.T) {
	s, medium := setupTestStore(t)
	first, _ := s.ActiveProject()

	s.SetActiveProject("project-ghost")
	_, ok := s.ActiveProject()
	assert.False(t, ok)

	s.Reload()
	p, ok := s.ActiveProject()
	require.True(t, ok)
	assert.Equal(t, first.ID, p.ID)

	before := version(t, medium)
	s.SetActiveProject(first.ID)
	assert.Equal(t, before, version(t, medium), "selecting the active project writes nothing")
}

func TestRenameProject(t *testing.T) {
	s, medium := setupTestStore(t)
	p, _ := s.ActiveProject()

	before := version(t, medium)
	assert.False(t, s.RenameProject(p.ID, "  "))
	assert.False(t, s.RenameProject("project-missing", "x"))
	assert.False(t, s.RenameProject(p.ID, model.DefaultProjectName))
	assert.Equal(t, before, version(t, medium))

	require.True(t, s.RenameProject(p.ID, " Work "))
	renamed, _ := s.ActiveProject()
	assert.Equal(t, "Work", renamed.Name)
}

func TestUpdateSettings(t *testing.T) {
	s, medium := setupTestStore(t)

	settings := s.Settings()
	settings.CopyFormat = model.CopyFormatHTML
	settings.StatusColors[model.StatusDone] = "#000000"
	assert.Equal(t, "#22c55e", s.Settings().StatusColors[model.StatusDone], "Settings returns a copy")

	s.UpdateSettings(settings)
	settings.StatusColors[model.StatusDone] = "#ffffff"

	got := s.Settings()
	assert.Equal(t, model.CopyFormatHTML, got.CopyFormat)
	assert.Equal(t, "#000000", got.StatusColors[model.StatusDone])
	assert.Equal(t, model.CopyFormatHTML, reopen(medium).Settings.CopyFormat)
}

func TestImportActivity_ExistingEntryWins(t *testing.T) {
	s, medium := setupTestStore(t)
	existing := model.GlobalActivity{
		ID: "x1", TaskID: "task-1", Timestamp: start.Add(time.Hour),
		Type: model.ActivityStatus, TaskContent: "original", From: "Pendiente", To: "Listo",
	}
	_, err := s.MergeActivity([]model.GlobalActivity{existing})
	require.NoError(t, err)
	before := version(t, medium)

	added, err := s.ImportActivity([]byte(`[{"id":"x1","timestamp":"2024-01-01T00:00:00Z","type":"created","taskContent":"t"}]`))

	require.NoError(t, err)
	assert.Equal(t, 0, added)
	log := s.Activity()
	require.Len(t, log, 1)
	assert.Equal(t, "original", log[0].TaskContent)
	assert.True(t, log[0].Timestamp.Equal(existing.Timestamp))
	assert.Equal(t, before, version(t, medium), "nothing new, nothing written")
}

func TestImportActivity_MergesAndSorts(t *testing.T) {
	s, _ := setupTestStore(t)
	s.CreateTask("local") // stamped start+1s

	added, err := s.ImportActivity([]byte(`[
		{"id":"old","taskId":"task-9","timestamp":"2024-05-01T00:00:00Z","type":"created","taskContent":"imported old"},
		{"id":"new","taskId":"task-9","timestamp":"2024-07-01T00:00:00Z","type":"deleted","taskContent":"imported new"}
	]`))

	require.NoError(t, err)
	assert.Equal(t, 2, added)
	log := s.Activity()
	require.Len(t, log, 3)
	assert.Equal(t, "new", log[0].ID)
	assert.Equal(t, "local", log[1].TaskContent)
	assert.Equal(t, "old", log[2].ID)
}

func TestImportActivity_RejectsWholeBatch(t *testing.T) {
	s, medium := setupTestStore(t)
	before := version(t, medium)

	_, err := s.ImportActivity([]byte(`[
		{"id":"ok","timestamp":"2024-01-01T00:00:00Z","type":"created","taskContent":"t"},
		{"id":"bad","timestamp":"2024-01-01T00:00:00Z","type":"created"}
	]`))

	var verr *activity.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "taskContent", verr.Field)
	assert.Empty(t, s.Activity())
	assert.Equal(t, before, version(t, medium))
}

func TestActivity_NoActiveProject(t *testing.T) {
	s, _ := setupTestStore(t)
	s.SetActiveProject("")

	_, err := s.ImportActivity([]byte(`[]`))
	assert.ErrorIs(t, err, ErrNoActiveProject)

	_, err = s.ExportActivity()
	assert.ErrorIs(t, err, ErrNoActiveProject)

	_, err = s.MergeActivity(nil)
	assert.ErrorIs(t, err, ErrNoActiveProject)

	assert.Nil(t, s.Activity())
	assert.Nil(t, s.Tasks())
	assert.Equal(t, 0, s.ClearCompletedTasks())
	assert.False(t, s.DeleteTask("anything"))
}

func TestExportActivity_RoundTripsThroughImport(t *testing.T) {
	s, _ := setupTestStore(t)
	id, _ := s.CreateTask("one")
	s.UpdateTaskStatus(id, model.StatusDone)

	data, err := s.ExportActivity()
	require.NoError(t, err)

	entries, err := activity.Decode(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActivityCreated, entries[0].Type, "export is oldest first")

	other, _ := setupTestStore(t)
	added, err := other.ImportActivity(data)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, model.ActivityStatus, other.Activity()[0].Type)
}

func TestSearchActivity(t *testing.T) {
	s, _ := setupTestStore(t)
	s.CreateTask("Buy milk")
	s.CreateTask("Write report")

	found := s.SearchActivity("MILK")

	require.Len(t, found, 1)
	assert.Equal(t, "Buy milk", found[0].TaskContent)
}

func TestProjects_AreCopies(t *testing.T) {
	s, _ := setupTestStore(t)
	id, _ := s.CreateTask("original")

	projects := s.Projects()
	projects[0].Tasks[0].Content = "mutated"
	projects[0].Name = "mutated"

	task, _ := s.Task(id)
	assert.Equal(t, "original", task.Content)
	p, _ := s.ActiveProject()
	assert.Equal(t, model.DefaultProjectName, p.Name)
}

func TestReload_ReplacesStateWholesale(t *testing.T) {
	medium := storage.NewMemoryMedium()
	window1 := New(storage.NewAdapter(medium, nil))
	window2 := New(storage.NewAdapter(medium, nil))

	window1.CreateTask("from window one")
	assert.Empty(t, window2.Tasks())

	window2.Reload()
	tasks := window2.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "from window one", tasks[0].Content)
}

func TestSync_ReloadsOnOtherWindowWrites(t *testing.T) {
	medium := storage.NewMemoryMedium()
	window1 := New(storage.NewAdapter(medium, nil))
	adapter2 := storage.NewAdapter(medium, nil)
	window2 := New(adapter2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	syncDone := make(chan error, 1)
	go func() { _ = adapter2.Watch(ctx, 5*time.Millisecond) }()
	go func() { syncDone <- window2.Sync(ctx, func() { changed <- struct{}{} }) }()

	// Let Watch record the starting versions and Sync subscribe
	time.Sleep(20 * time.Millisecond)
	window1.CreateTask("shared")

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	tasks := window2.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "shared", tasks[0].Content)

	cancel()
	assert.ErrorIs(t, <-syncDone, context.Canceled)
}

package listquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmarvs/pmboard/backend"
)

func sampleTasks() []backend.ManagerTask {
	return []backend.ManagerTask{
		{ID: 1, ProjectName: "Website Revamp", Status: StatusDone},
		{ID: 2, ProjectName: "Website Revamp", Status: StatusTodo},
		{ID: 3, ProjectName: "Mobile App", Status: StatusDone},
		{ID: 4, ProjectName: "Website Revamp", Status: StatusDone},
		{ID: 5, ProjectName: "Billing", Status: StatusInProgress},
		{ID: 6, ProjectName: "Website Revamp", Status: StatusInProgress},
		{ID: 7, ProjectName: "Mobile App", Status: StatusTodo},
		{ID: 8, ProjectName: "Website Revamp", Status: StatusDone},
		{ID: 9, ProjectName: "Billing", Status: StatusDone},
		{ID: 10, ProjectName: "Mobile App", Status: StatusInProgress},
	}
}

func TestApplyStatusAndProject(t *testing.T) {
	tasks := sampleTasks()
	filter := FilterState{Status: StatusDone, Project: "Website Revamp"}

	filtered := Apply(tasks, filter)
	require.Len(t, filtered, 3)
	assert.Equal(t, []int64{1, 4, 8}, []int64{filtered[0].ID, filtered[1].ID, filtered[2].ID})
	assert.Len(t, tasks, 10, "input must not change")
}

func TestApplyIdempotent(t *testing.T) {
	tasks := sampleTasks()
	filter := FilterState{Status: StatusInProgress, Project: ProjectAll}

	once := Apply(tasks, filter)
	twice := Apply(once, filter)
	assert.Equal(t, once, twice)
	assert.Equal(t, once, Apply(tasks, filter))
}

func TestApplyDefaultKeepsEverything(t *testing.T) {
	tasks := sampleTasks()
	assert.Equal(t, tasks, Apply(tasks, DefaultFilter()))
	assert.Equal(t, tasks, Apply(tasks, FilterState{}))
}

func TestProjectNamesFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"Website Revamp", "Mobile App", "Billing"}, ProjectNames(sampleTasks()))
	assert.Empty(t, ProjectNames([]backend.ManagerTask{}))
}

func TestParseFilter(t *testing.T) {
	state, err := ParseFilter("", "")
	require.NoError(t, err)
	assert.True(t, state.IsDefault())

	state, err = ParseFilter(" Done ", "Billing")
	require.NoError(t, err)
	assert.Equal(t, FilterState{Status: StatusDone, Project: "Billing"}, state)

	_, err = ParseFilter("archived", "")
	assert.Error(t, err)
}

package repository

import (
	"testing"

	"github.com/sidetrack-app/sidetrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type LabelRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	repo  LabelRepository
	owner *models.User
	other *models.User
	task  *models.Task
}

func (suite *LabelRepositoryTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.repo = NewLabelRepository(suite.db)
	suite.owner = createUser(suite.T(), suite.db, "owner@example.com")
	suite.other = createUser(suite.T(), suite.db, "other@example.com")
	suite.task = createTask(suite.T(), suite.db, suite.owner.ID, "Task")
}

func (suite *LabelRepositoryTestSuite) TestAttach_IdempotentUpsert() {
	label, created, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)
	assert.True(suite.T(), created)
	assert.Equal(suite.T(), "Backend", label.Name)
	assert.NotZero(suite.T(), label.ID)

	again, created, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)
	assert.False(suite.T(), created)
	assert.Equal(suite.T(), label.ID, again.ID)

	// exactly one label row and one join row after both calls
	assert.EqualValues(suite.T(), 1, countRows(suite.T(), suite.db, &models.Label{}))
	assert.EqualValues(suite.T(), 1, countRows(suite.T(), suite.db, &models.TaskLabel{}))
}

func (suite *LabelRepositoryTestSuite) TestAttach_SameNameOnSecondTaskReusesLabel() {
	second := createTask(suite.T(), suite.db, suite.owner.ID, "Second")

	first, created, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)
	assert.True(suite.T(), created)

	reused, created, err := suite.repo.Attach(second.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)
	assert.False(suite.T(), created)
	assert.Equal(suite.T(), first.ID, reused.ID)

	assert.EqualValues(suite.T(), 1, countRows(suite.T(), suite.db, &models.Label{}))
	assert.EqualValues(suite.T(), 2, countRows(suite.T(), suite.db, &models.TaskLabel{}))
}

func (suite *LabelRepositoryTestSuite) TestAttach_DifferentOwnersKeepSeparateLabels() {
	otherTask := createTask(suite.T(), suite.db, suite.other.ID, "Other task")

	mine, _, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)
	theirs, created, err := suite.repo.Attach(otherTask.ID, suite.other.ID, "Backend")
	suite.Require().NoError(err)

	assert.True(suite.T(), created)
	assert.NotEqual(suite.T(), mine.ID, theirs.ID)
	assert.EqualValues(suite.T(), 2, countRows(suite.T(), suite.db, &models.Label{}))
}

func (suite *LabelRepositoryTestSuite) TestAttach_TaskNotOwned() {
	_, _, err := suite.repo.Attach(suite.task.ID, suite.other.ID, "Backend")
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	// the rejected attach created nothing
	assert.EqualValues(suite.T(), 0, countRows(suite.T(), suite.db, &models.Label{}))
	assert.EqualValues(suite.T(), 0, countRows(suite.T(), suite.db, &models.TaskLabel{}))
}

func (suite *LabelRepositoryTestSuite) TestDetach_Idempotent() {
	label, _, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)

	affected, err := suite.repo.Detach(suite.task.ID, label.ID, suite.owner.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), affected)

	affected, err = suite.repo.Detach(suite.task.ID, label.ID, suite.owner.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), affected)

	// the label itself remains
	assert.EqualValues(suite.T(), 1, countRows(suite.T(), suite.db, &models.Label{}))
}

func (suite *LabelRepositoryTestSuite) TestDetach_OwnershipIsolation() {
	label, _, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)

	affected, err := suite.repo.Detach(suite.task.ID, label.ID, suite.other.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), affected)
	assert.EqualValues(suite.T(), 1, countRows(suite.T(), suite.db, &models.TaskLabel{}))
}

func (suite *LabelRepositoryTestSuite) TestDelete_RemovesJoinRows() {
	second := createTask(suite.T(), suite.db, suite.owner.ID, "Second")
	label, _, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)
	_, _, err = suite.repo.Attach(second.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)

	affected, err := suite.repo.Delete(label.ID, suite.owner.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), affected)

	assert.EqualValues(suite.T(), 0, countRows(suite.T(), suite.db, &models.Label{}))
	assert.EqualValues(suite.T(), 0, countRows(suite.T(), suite.db, &models.TaskLabel{}))
	// tasks are untouched by label deletion
	assert.EqualValues(suite.T(), 2, countRows(suite.T(), suite.db, &models.Task{}))

	affected, err = suite.repo.Delete(label.ID, suite.owner.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), affected)
}

func (suite *LabelRepositoryTestSuite) TestListByOwner() {
	_, _, err := suite.repo.Attach(suite.task.ID, suite.owner.ID, "Urgent")
	suite.Require().NoError(err)
	_, _, err = suite.repo.Attach(suite.task.ID, suite.owner.ID, "Backend")
	suite.Require().NoError(err)

	labels, err := suite.repo.ListByOwner(suite.owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(labels, 2)
	assert.Equal(suite.T(), "Backend", labels[0].Name)
	assert.Equal(suite.T(), "Urgent", labels[1].Name)

	labels, err = suite.repo.ListByOwner(suite.other.ID)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), labels)
}

func TestLabelRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(LabelRepositoryTestSuite))
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// MongoRepository stores users and projects in MongoDB. Modules and issues
// live in one document per project: {projectKey, modules} and
// {projectKey, issues}.
type MongoRepository struct {
	UsersCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	ModulesCollection  *mongo.Collection
	IssuesCollection   *mongo.Collection
}

type moduleDocument struct {
	ProjectKey string              `bson:"projectKey"`
	Modules    []models.ModuleInfo `bson:"modules"`
}

type issueDocument struct {
	ProjectKey string             `bson:"projectKey"`
	Issues     []models.IssueInfo `bson:"issues"`
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		UsersCollection:    db.Collection("users"),
		ProjectsCollection: db.Collection("projects"),
		ModulesCollection:  db.Collection("modules"),
		IssuesCollection:   db.Collection("issues"),
	}
}

// EnsureIndexes creates the unique indexes that back ErrDuplicate.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		collection *mongo.Collection
		field      string
	}{
		{r.UsersCollection, "username"},
		{r.ProjectsCollection, "key"},
		{r.ModulesCollection, "projectKey"},
		{r.IssuesCollection, "projectKey"},
	}
	for _, idx := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: idx.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := idx.collection.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create unique index on %s.%s: %w", idx.collection.Name(), idx.field, err)
		}
	}
	return nil
}

func mapWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func mapFindError(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (r *MongoRepository) FindUser(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.UsersCollection.FindOne(ctx, bson.M{"username": username}).Decode(&account); err != nil {
		return nil, mapFindError(err, fmt.Sprintf("user %q", username))
	}
	return &account, nil
}

func (r *MongoRepository) ListUsers(ctx context.Context) ([]models.Account, error) {
	cursor, err := r.UsersCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.Account{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *MongoRepository) InsertUser(ctx context.Context, account models.Account) error {
	_, err := r.UsersCollection.InsertOne(ctx, account)
	return mapWriteError(err, fmt.Sprintf("user %q", account.Username))
}

func (r *MongoRepository) ReplaceUser(ctx context.Context, username string, account models.Account) error {
	result, err := r.UsersCollection.ReplaceOne(ctx, bson.M{"username": username}, account)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("user %q", account.Username))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return nil
}

func (r *MongoRepository) DeleteUser(ctx context.Context, username string) error {
	result, err := r.UsersCollection.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("failed to delete user %q: %w", username, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return nil
}

func (r *MongoRepository) ListProjects(ctx context.Context) ([]models.ProjectInfo, error) {
	cursor, err := r.ProjectsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.ProjectInfo{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

func (r *MongoRepository) FindProject(ctx context.Context, key string) (*models.ProjectInfo, error) {
	var project models.ProjectInfo
	if err := r.ProjectsCollection.FindOne(ctx, bson.M{"key": key}).Decode(&project); err != nil {
		return nil, mapFindError(err, fmt.Sprintf("project %q", key))
	}
	return &project, nil
}

func (r *MongoRepository) InsertProject(ctx context.Context, project models.ProjectInfo) error {
	what := fmt.Sprintf("project %q", project.Key)
	if _, err := r.ProjectsCollection.InsertOne(ctx, project); err != nil {
		return mapWriteError(err, what)
	}
	if _, err := r.ModulesCollection.InsertOne(ctx, moduleDocument{ProjectKey: project.Key, Modules: []models.ModuleInfo{}}); err != nil {
		return mapWriteError(err, what)
	}
	if _, err := r.IssuesCollection.InsertOne(ctx, issueDocument{ProjectKey: project.Key, Issues: []models.IssueInfo{}}); err != nil {
		return mapWriteError(err, what)
	}
	return nil
}

func (r *MongoRepository) ReplaceProject(ctx context.Context, project models.ProjectInfo) error {
	result, err := r.ProjectsCollection.ReplaceOne(ctx, bson.M{"key": project.Key}, project)
	if err != nil {
		return fmt.Errorf("failed to update project %q: %w", project.Key, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("project %q: %w", project.Key, ErrNotFound)
	}
	return nil
}

func (r *MongoRepository) DeleteProject(ctx context.Context, key string) error {
	result, err := r.ProjectsCollection.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return fmt.Errorf("failed to delete project %q: %w", key, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("project %q: %w", key, ErrNotFound)
	}
	if _, err := r.ModulesCollection.DeleteOne(ctx, bson.M{"projectKey": key}); err != nil {
		return fmt.Errorf("failed to delete modules of %q: %w", key, err)
	}
	if _, err := r.IssuesCollection.DeleteOne(ctx, bson.M{"projectKey": key}); err != nil {
		return fmt.Errorf("failed to delete issues of %q: %w", key, err)
	}
	return nil
}

func (r *MongoRepository) GetModules(ctx context.Context, key string) ([]models.ModuleInfo, error) {
	var doc moduleDocument
	if err := r.ModulesCollection.FindOne(ctx, bson.M{"projectKey": key}).Decode(&doc); err != nil {
		return nil, mapFindError(err, fmt.Sprintf("modules of %q", key))
	}
	if doc.Modules == nil {
		doc.Modules = []models.ModuleInfo{}
	}
	return doc.Modules, nil
}

func (r *MongoRepository) SetModules(ctx context.Context, key string, modules []models.ModuleInfo) error {
	update := bson.M{"$set": bson.M{"modules": modules}}
	result, err := r.ModulesCollection.UpdateOne(ctx, bson.M{"projectKey": key}, update)
	if err != nil {
		return fmt.Errorf("failed to update modules of %q: %w", key, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("modules of %q: %w", key, ErrNotFound)
	}
	return nil
}

func (r *MongoRepository) GetIssues(ctx context.Context, key string) ([]models.IssueInfo, error) {
	var doc issueDocument
	if err := r.IssuesCollection.FindOne(ctx, bson.M{"projectKey": key}).Decode(&doc); err != nil {
		return nil, mapFindError(err, fmt.Sprintf("issues of %q", key))
	}
	if doc.Issues == nil {
		doc.Issues = []models.IssueInfo{}
	}
	return doc.Issues, nil
}

func (r *MongoRepository) SetIssues(ctx context.Context, key string, issues []models.IssueInfo) error {
	update := bson.M{"$set": bson.M{"issues": issues}}
	result, err := r.IssuesCollection.UpdateOne(ctx, bson.M{"projectKey": key}, update)
	if err != nil {
		return fmt.Errorf("failed to update issues of %q: %w", key, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("issues of %q: %w", key, ErrNotFound)
	}
	return nil
}

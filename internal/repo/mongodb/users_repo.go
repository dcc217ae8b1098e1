package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const usersCollection = "users"

// userDoc mirrors the documents written by the previous mongoose service,
// including its "__v" version key.
type userDoc struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Name     string        `bson:"name"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
	TodoList []todoDoc     `bson:"todoList"`
	Version  int64         `bson:"__v"`
}

// Date is a "YYYY-MM-DD" string; older documents hold a BSON datetime instead.
type todoDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	Date        any           `bson:"date"`
	Task        string        `bson:"task"`
	IsCompleted bool          `bson:"isCompleted"`
}

type UsersRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
	obs    observability.StoreObserver
}

func NewUsersRepo(db *mongo.Database, obs observability.StoreObserver) *UsersRepo {
	if obs == nil {
		obs = observability.NopObserver{}
	}

	return &UsersRepo{
		client: db.Client(),
		coll:   db.Collection(usersCollection),
		obs:    obs,
	}
}

// EnsureIndexes creates the email lookup index. Email is not unique at the
// store level; registration checks it before inserting.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})

	return err
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "users.find_by_email", bson.M{"email": email})
}

// FindByID treats ids that are not valid ObjectIDs as absent.
func (r *UsersRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := bson.ObjectIDFromHex(id)

	if err != nil {
		return nil, nil
	}

	return r.findOne(ctx, "users.find_by_id", bson.M{"_id": oid})
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M) (*user.User, error) {
	var doc userDoc
	found := true

	err := r.obs.ObserveStore(op, func() error {
		err := r.coll.FindOne(ctx, filter).Decode(&doc)

		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}

		return err
	})

	if err != nil {
		return nil, fmt.Errorf("mongo %s: %w", op, err)
	}

	if !found {
		return nil, nil
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) Save(ctx context.Context, u *user.User) (*user.User, error) {
	if u.ID == "" {
		return r.insert(ctx, u)
	}

	doc, err := fromDomain(u)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": doc.ID, "__v": doc.Version}
	if doc.Version == 0 {
		filter = bson.M{"_id": doc.ID, "$or": bson.A{
			bson.M{"__v": 0},
			bson.M{"__v": bson.M{"$exists": false}},
		}}
	}

	doc.Version++

	err = r.obs.ObserveStore("users.replace", func() error {
		res, err := r.coll.ReplaceOne(ctx, filter, doc)

		if err != nil {
			return err
		}

		if res.MatchedCount == 0 {
			return user.ErrVersionConflict
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("mongo users.replace: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) insert(ctx context.Context, u *user.User) (*user.User, error) {
	doc, err := fromDomain(u)
	if err != nil {
		return nil, err
	}

	doc.ID = bson.NewObjectID()
	doc.Version = 0

	err = r.obs.ObserveStore("users.insert", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("mongo users.insert: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func fromDomain(u *user.User) (userDoc, error) {
	doc := userDoc{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
		TodoList: make([]todoDoc, 0, len(u.TodoList)),
		Version:  u.Version,
	}

	if u.ID != "" {
		oid, err := bson.ObjectIDFromHex(u.ID)
		if err != nil {
			return userDoc{}, fmt.Errorf("user id %q: %w", u.ID, user.ErrNotFound)
		}
		doc.ID = oid
	}

	for _, item := range u.TodoList {
		td := todoDoc{
			Date:        item.Date,
			Task:        item.Task,
			IsCompleted: item.IsCompleted,
		}

		if item.ID == "" {
			td.ID = bson.NewObjectID()
		} else {
			oid, err := bson.ObjectIDFromHex(item.ID)
			if err != nil {
				return userDoc{}, fmt.Errorf("todo id %q is not an ObjectID: %w", item.ID, err)
			}
			td.ID = oid
		}

		doc.TodoList = append(doc.TodoList, td)
	}

	return doc, nil
}

func (d userDoc) toDomain() *user.User {
	u := &user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		TodoList:     make([]todo.Todo, 0, len(d.TodoList)),
		Version:      d.Version,
	}

	for _, td := range d.TodoList {
		u.TodoList = append(u.TodoList, todo.Todo{
			ID:          td.ID.Hex(),
			Date:        dateKey(td.Date),
			Task:        td.Task,
			IsCompleted: td.IsCompleted,
		})
	}

	return u
}

func dateKey(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case bson.DateTime:
		return d.Time().UTC().Format(todo.DateLayout)
	case time.Time:
		return d.UTC().Format(todo.DateLayout)
	default:
		return ""
	}
}

package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// userDoc is the Firestore persistence model. Location is kept as its JSON encoding.
type userDoc struct {
	ID       string    `firestore:"id"`
	Name     string    `firestore:"name"`
	Email    string    `firestore:"email"`
	Status   string    `firestore:"status"`
	Location string    `firestore:"location"`
	Bio      string    `firestore:"bio"`
	LastSeen time.Time `firestore:"last_seen"`
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
	}
}

func (r *userRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, usersCollection))
}

func (r *userRepository) toDoc(user *model.User) (*userDoc, error) {
	loc, err := model.MarshalLocation(user.Location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode location", goerr.V("id", user.ID))
	}
	return &userDoc{
		ID:       user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Status:   user.Status.String(),
		Location: loc,
		Bio:      user.Bio,
		LastSeen: user.LastSeen,
	}, nil
}

func (r *userRepository) fromDoc(doc *userDoc) *model.User {
	return &model.User{
		ID:       model.UserID(doc.ID),
		Name:     doc.Name,
		Email:    doc.Email,
		Status:   types.UserStatus(doc.Status),
		Location: model.ParseLocation([]byte(doc.Location)),
		Bio:      doc.Bio,
		LastSeen: doc.LastSeen,
	}
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	doc, err := r.toDoc(user)
	if err != nil {
		return err
	}
	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert user", goerr.V("id", user.ID))
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	doc, err := r.toDoc(user)
	if err != nil {
		return err
	}

	ref := r.collection().Doc(doc.ID)
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update user profile", goerr.V("id", user.ID))
	}
	return nil
}

// update applies field updates, ignoring users that do not exist
func (r *userRepository) update(ctx context.Context, id model.UserID, updates []firestore.Update) error {
	_, err := r.collection().Doc(id.String()).Update(ctx, updates)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}

func (r *userRepository) SetLocation(ctx context.Context, id model.UserID, location *model.Location, seenAt time.Time) error {
	loc, err := model.MarshalLocation(location)
	if err != nil {
		return goerr.Wrap(err, "failed to encode location", goerr.V("id", id))
	}

	if err := r.update(ctx, id, []firestore.Update{
		{Path: "location", Value: loc},
		{Path: "last_seen", Value: seenAt},
	}); err != nil {
		return goerr.Wrap(err, "failed to set location", goerr.V("id", id))
	}
	return nil
}

func (r *userRepository) SetStatus(ctx context.Context, id model.UserID, s types.UserStatus) error {
	if err := r.update(ctx, id, []firestore.Update{
		{Path: "status", Value: s.String()},
	}); err != nil {
		return goerr.Wrap(err, "failed to set status", goerr.V("id", id), goerr.V("status", s))
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id model.UserID) error {
	if _, err := r.collection().Doc(id.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("id", id))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}
	return r.fromDoc(&doc), nil
}

func (r *userRepository) ListActive(ctx context.Context, since time.Time) ([]*model.User, error) {
	iter := r.collection().Where("last_seen", ">", since).Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users", goerr.V("since", since))
		}

		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("docID", snap.Ref.ID))
		}
		users = append(users, r.fromDoc(&doc))
	}
	return users, nil
}

package service

import (
	"strings"
	"unicode/utf8"

	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/server/serializer"
	"github.com/mdouchement/corkboard/internal/server/session"
	"github.com/pkg/errors"
)

// MaxNameLength is the maximum length of a user name.
const MaxNameLength = 40

type (
	// A UserService handles the flatmates.
	UserService struct {
		db       database.Client
		sessions session.Manager
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Name string `json:"name"`
	}

	// UpdateUserParams are used to update a user.
	UpdateUserParams struct {
		Handle *string `json:"handle"`
		Avatar *string `json:"avatar"`
	}
)

// NewUserService returns a new UserService.
func NewUserService(db database.Client, sessions session.Manager) *UserService {
	return &UserService{
		db:       db,
		sessions: sessions,
	}
}

// Login logs in the user with the given name, creating it on its first login.
func (s *UserService) Login(params LoginParams) (M, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, cberror.BadRequest("Please provide a name.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, cberror.BadRequest("Name is too long (%d characters max).", MaxNameLength)
	}

	user, err := s.db.FindUserByName(name)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not get access to database")
		}

		if user, err = s.register(name); err != nil {
			return nil, err
		}
	}

	token, err := s.sessions.Token(user)
	if err != nil {
		return nil, err
	}

	return M{
		"user":  serializer.User(user),
		"token": token,
	}, nil
}

func (s *UserService) register(name string) (*model.User, error) {
	users, err := s.db.FindUsers()
	if err != nil {
		return nil, errors.Wrap(err, "could not list users")
	}

	user := model.NewUser(name, users)
	if err = s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			// Registered concurrently.
			user, err = s.db.FindUserByName(name)
			return user, errors.Wrap(err, "could not get access to database")
		}
		return nil, errors.Wrap(err, "could not save user")
	}
	return user, nil
}

// List returns all the users.
func (s *UserService) List() ([]*model.User, error) {
	users, err := s.db.FindUsers()
	return users, errors.Wrap(err, "could not list users")
}

// Update updates the social handle and the avatar of the user.
func (s *UserService) Update(user *model.User, params UpdateUserParams) (*model.User, error) {
	if params.Handle != nil {
		user.Handle = strings.TrimSpace(*params.Handle)
	}
	if params.Avatar != nil {
		user.Avatar = strings.TrimSpace(*params.Avatar)
	}

	return user, errors.Wrap(s.db.Save(user), "could not save user")
}

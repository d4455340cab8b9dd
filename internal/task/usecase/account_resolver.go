package usecase

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authdomain "github.com/taskosaur/mailroom/internal/auth/domain"
	authrepo "github.com/taskosaur/mailroom/internal/auth/repository"
	taskrepo "github.com/taskosaur/mailroom/internal/task/repository"
)

// AccountResolver maps inbound sender addresses to user records, creating a
// viewer-level account on first contact.
type AccountResolver struct {
	users    authrepo.UserRepository
	projects taskrepo.ProjectRepository
	members  taskrepo.MemberRepository
}

// NewAccountResolver creates an AccountResolver.
func NewAccountResolver(users authrepo.UserRepository, projects taskrepo.ProjectRepository, members taskrepo.MemberRepository) *AccountResolver {
	return &AccountResolver{users: users, projects: projects, members: members}
}

// ResolveReporter returns the user for a sender address, creating one with a
// random credential and viewer membership at org/workspace/project scope if
// none exists. An existing user is also granted project-scope viewer
// membership if they have none, so their comments are attributable.
func (r *AccountResolver) ResolveReporter(projectID, email, displayName string) (*authdomain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("sender has no email address")
	}

	user, err := r.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		name := displayName
		if name == "" {
			name = email
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to generate credential: %w", err)
		}
		user = &authdomain.User{Email: email, Name: name, Password: string(hash)}
		if err := r.users.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		isMember, err := r.members.IsProjectMember(projectID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if isMember {
			return user, nil
		}
	}

	project, err := r.projects.FindByID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}

	if err := r.members.AddViewerMemberships(project.OrganizationID, project.WorkspaceID, projectID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to grant memberships: %w", err)
	}
	return user, nil
}

package models

// ProfileRole distinguishes contributors from project maintainers.
type ProfileRole string

const (
	RoleContributor ProfileRole = "contributor"
	RoleMaintainer  ProfileRole = "maintainer"
)

// Profile is the document describing an actor. Peripheral to the match
// core; the detector only consults it to confirm a referenced actor
// still exists.
type Profile struct {
	ActorID      string      `dynamodbav:"actorId" json:"actorId"`
	DisplayName  string      `dynamodbav:"displayName" json:"displayName"`
	Role         ProfileRole `dynamodbav:"role" json:"role"`
	Bio          string      `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	TechStack    []string    `dynamodbav:"techStack,omitempty" json:"techStack,omitempty"`
	GithubHandle string      `dynamodbav:"githubHandle,omitempty" json:"githubHandle,omitempty"`
	CreatedAt    string      `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    string      `dynamodbav:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Project is a swipeable project document. The owner is the maintainer
// entitled to accept interested contributors on the project's behalf.
type Project struct {
	ProjectID   string   `dynamodbav:"projectId" json:"projectId"`
	OwnerID     string   `dynamodbav:"ownerId" json:"ownerId"`
	Name        string   `dynamodbav:"name" json:"name"`
	Description string   `dynamodbav:"description,omitempty" json:"description,omitempty"`
	TechStack   []string `dynamodbav:"techStack,omitempty" json:"techStack,omitempty"`
	CreatedAt   string   `dynamodbav:"createdAt" json:"createdAt"`
}

// ProfilesTable is the DynamoDB table name for actor profiles.
const ProfilesTable = "Profiles"

// ProjectsTable is the DynamoDB table name for projects.
const ProjectsTable = "Projects"

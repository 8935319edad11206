package domain

import "context"

// ArtifactKind names one of the files a build writes.
type ArtifactKind string

const (
	ArtifactGraph    ArtifactKind = "graph"
	ArtifactHeatmap  ArtifactKind = "heatmap"
	ArtifactTable    ArtifactKind = "table"
	ArtifactSnapshot ArtifactKind = "json"
)

// AllArtifactKinds lists the artifact kinds in the order a build writes them.
func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactTable, ArtifactGraph, ArtifactHeatmap, ArtifactSnapshot}
}

// CurriculumService defines the operations exposed to the API and CLI.
type CurriculumService interface {
	// ListDisciplines returns every discipline with a registered template.
	ListDisciplines() []string

	// Build runs a full build for discipline, stores it and returns the summary.
	Build(ctx context.Context, discipline string) (*MasterCurriculum, error)

	// BuildAll builds every registered discipline.
	BuildAll(ctx context.Context) ([]*MasterCurriculum, error)

	// GetLatest returns the most recent stored build summary.
	GetLatest(ctx context.Context, discipline string) (*MasterCurriculum, error)

	// GetConcepts returns the concepts of the most recent stored build.
	GetConcepts(ctx context.Context, discipline string) ([]*CurriculumConcept, error)

	// ListBuilds returns the stored build summaries of discipline, newest first.
	ListBuilds(ctx context.Context, discipline string) ([]*MasterCurriculum, error)

	// ArtifactPath resolves the file of the latest build for kind.
	ArtifactPath(ctx context.Context, discipline string, kind ArtifactKind) (string, error)
}

// CurriculumRepository persists build summaries and their concepts.
type CurriculumRepository interface {
	// SaveBuild stores the summary and all of its concepts.
	SaveBuild(ctx context.Context, build *MasterCurriculum) error

	// GetLatestBuild returns the newest build for discipline or ErrBuildNotFound.
	GetLatestBuild(ctx context.Context, discipline string) (*MasterCurriculum, error)

	// GetConcepts returns the concepts of buildID ordered by (category_order, sequence_order).
	GetConcepts(ctx context.Context, buildID string) ([]*CurriculumConcept, error)

	// ListBuilds returns the summaries of every build for discipline, newest first.
	ListBuilds(ctx context.Context, discipline string) ([]*MasterCurriculum, error)
}

// TransactionManager runs fn inside a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

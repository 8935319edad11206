package domain

// Level is an educational level, ordered from high school foundations to
// advanced graduate study.
type Level string

const (
	LevelHSFound   Level = "HS-Found"
	LevelHSAdv     Level = "HS-Adv"
	LevelUGIntro   Level = "UG-Intro"
	LevelUGAdv     Level = "UG-Adv"
	LevelGradIntro Level = "Grad-Intro"
	LevelGradAdv   Level = "Grad-Adv"
)

// BloomLevel is a tier of Bloom's taxonomy.
type BloomLevel string

const (
	BloomRemember   BloomLevel = "Remember"
	BloomUnderstand BloomLevel = "Understand"
	BloomApply      BloomLevel = "Apply"
	BloomAnalyze    BloomLevel = "Analyze"
	BloomEvaluate   BloomLevel = "Evaluate"
	BloomCreate     BloomLevel = "Create"
)

// AllLevels returns the six levels in ascending order.
func AllLevels() []Level {
	return []Level{LevelHSFound, LevelHSAdv, LevelUGIntro, LevelUGAdv, LevelGradIntro, LevelGradAdv}
}

// AllBloomLevels returns the six Bloom tiers in ascending order.
func AllBloomLevels() []BloomLevel {
	return []BloomLevel{BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate}
}

// EducationalProgression holds the read-only ordering tables used to validate
// and annotate concepts. Build one with NewEducationalProgression and pass it
// to whoever needs it; nothing mutates it after construction.
type EducationalProgression struct {
	levelHierarchy   map[Level]int
	bloomHierarchy   map[BloomLevel]int
	standardsByLevel map[Level][]string
}

// NewEducationalProgression returns the standard progression tables.
func NewEducationalProgression() *EducationalProgression {
	levels := make(map[Level]int, 6)
	for i, l := range AllLevels() {
		levels[l] = i + 1
	}
	blooms := make(map[BloomLevel]int, 6)
	for i, b := range AllBloomLevels() {
		blooms[b] = i + 1
	}
	return &EducationalProgression{
		levelHierarchy: levels,
		bloomHierarchy: blooms,
		standardsByLevel: map[Level][]string{
			LevelHSFound:   {"NGSS 9-12", "State Standards"},
			LevelHSAdv:     {"AP", "IB", "NGSS 9-12"},
			LevelUGIntro:   {"Intro-Core", "General Education"},
			LevelUGAdv:     {"Advanced-Core", "Major Requirements"},
			LevelGradIntro: {"Graduate Core", "Qualifying Exams"},
			LevelGradAdv:   {"Research Level", "Dissertation"},
		},
	}
}

// GetLevelOrder returns the 1-based rank of level, or 0 when unknown.
func (p *EducationalProgression) GetLevelOrder(level string) int {
	return p.levelHierarchy[Level(level)]
}

// GetBloomOrder returns the 1-based rank of bloom, or 0 when unknown.
func (p *EducationalProgression) GetBloomOrder(bloom string) int {
	return p.bloomHierarchy[BloomLevel(bloom)]
}

// IsKnownLevel reports whether level is one of the six educational levels.
func (p *EducationalProgression) IsKnownLevel(level string) bool {
	return p.GetLevelOrder(level) > 0
}

// IsKnownBloom reports whether bloom is one of the six Bloom tiers.
func (p *EducationalProgression) IsKnownBloom(bloom string) bool {
	return p.GetBloomOrder(bloom) > 0
}

// StandardsForLevel returns a copy of the standards that apply at level.
func (p *EducationalProgression) StandardsForLevel(level Level) []string {
	src := p.standardsByLevel[level]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// StandardsByLevel returns a copy of the whole level -> standards table.
func (p *EducationalProgression) StandardsByLevel() map[Level][]string {
	out := make(map[Level][]string, len(p.standardsByLevel))
	for l := range p.standardsByLevel {
		out[l] = p.StandardsForLevel(l)
	}
	return out
}

// LowestLevel returns the level with the smallest rank among levels, or ""
// when none of them is known.
func (p *EducationalProgression) LowestLevel(levels []Level) Level {
	var best Level
	bestRank := 0
	for _, l := range levels {
		r := p.GetLevelOrder(string(l))
		if r == 0 {
			continue
		}
		if bestRank == 0 || r < bestRank {
			best, bestRank = l, r
		}
	}
	return best
}

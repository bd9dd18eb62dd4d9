package instructors

// ClassRef identifies one class taught by an instructor.
type ClassRef struct {
	Term       string `json:"term"`
	CourseCode string `json:"course_code"`
}

// ReviewCourse references a course a review talks about. A single
// review may belong to multiple courses.
type ReviewCourse struct {
	Code  string `json:"c,omitempty"`
	Title string `json:"t,omitempty"`
}

// Review is one raw review payload from the review site. Kept only in
// the structured instructor export.
type Review struct {
	Text          string         `json:"text"`
	Workload      string         `json:"workload,omitempty"`
	Courses       []ReviewCourse `json:"course_codes,omitempty"`
	PublishDate   string         `json:"publish_date"`
	AgreeCount    int            `json:"agree_count"`
	DisagreeCount int            `json:"disagree_count"`
	FunnyCount    int            `json:"funny_count"`
}

// ScholarFields is the citation-index enrichment block.
type ScholarFields struct {
	ScholarID    string         `json:"scholar_id"`
	Interests    []string       `json:"interests,omitempty"`
	CitedBy      int            `json:"citedby,omitempty"`
	CitedBy5y    int            `json:"citedby5y,omitempty"`
	HIndex       int            `json:"hindex,omitempty"`
	HIndex5y     int            `json:"hindex5y,omitempty"`
	I10Index     int            `json:"i10index,omitempty"`
	I10Index5y   int            `json:"i10index5y,omitempty"`
	CitesPerYear map[string]int `json:"cites_per_year,omitempty"`
}

// Profile is the accumulated record for one instructor display name.
// The name is the key, no stable external identifier exists. Profiles
// are only ever created by a class listing naming the instructor,
// enrichment passes update existing profiles and never create them.
type Profile struct {
	Name        string     `json:"name"`
	Departments []string   `json:"departments"`
	Classes     []ClassRef `json:"classes"`

	CulpaLink         string   `json:"culpa_link,omitempty"`
	CulpaNugget       string   `json:"culpa_nugget,omitempty"`
	CulpaReviewsCount int      `json:"culpa_reviews_count,omitempty"`
	CulpaReviews      []Review `json:"culpa_reviews,omitempty"`

	WikipediaLink string `json:"wikipedia_link,omitempty"`

	Scholar *ScholarFields `json:"gscholar,omitempty"`
}

// Enrichment is an overlay of profile fields one pass wants to
// attach. Zero-valued fields are left untouched on the profile.
type Enrichment struct {
	CulpaLink         string
	CulpaNugget       string
	CulpaReviewsCount int
	CulpaReviews      []Review
	WikipediaLink     string
	Scholar           *ScholarFields
}

package funding

import (
	"strings"

	"github.com/warp/funding-engine/generic"
)

// =============================================================================
// LEARNER PROFILE
// =============================================================================

// LearnerProfile is the sanitized learner built per assessment. Never stored.
type LearnerProfile struct {
	Age                 generic.Measure    `json:"age"`
	EmploymentStatus    EmploymentStatus   `json:"employmentStatus,omitempty"`
	Benefits            BenefitSet         `json:"benefits"`
	TakeHomePay         generic.Money      `json:"takeHomePay"`
	PartnerBenefitClaim bool               `json:"partnerBenefitClaim"`
	QualificationLevel  QualificationLevel `json:"qualificationLevel,omitempty"`
	Nationality         string             `json:"nationality,omitempty"`
	VisaType            string             `json:"visaType,omitempty"`
	Postcode            string             `json:"postcode,omitempty"`
}

// IsUKResident derives residency from nationality or settled status.
func (l LearnerProfile) IsUKResident() bool {
	return strings.EqualFold(strings.TrimSpace(l.Nationality), "UK") ||
		strings.EqualFold(strings.TrimSpace(l.VisaType), "settled")
}

// =============================================================================
// QUALIFICATION PROFILE
// =============================================================================

// StreamFunding is a course's funding under one stream.
type StreamFunding struct {
	Funded bool          `json:"funded"`
	Rate   generic.Money `json:"rate"`
}

// QualificationProfile is the course or aim being assessed against.
type QualificationProfile struct {
	LearningAimRef   string             `json:"learningAimRef"`
	LearningAimTitle string             `json:"learningAimTitle"`
	Level            QualificationLevel `json:"qualificationLevel,omitempty"`

	FundingStreams map[generic.StreamID]StreamFunding `json:"fundingStreams,omitempty"`

	Compatible16To19         bool `json:"compatible16to19"`
	CompatibleASF            bool `json:"compatibleASF"`
	CompatibleApprenticeship bool `json:"compatibleApprenticeship"`

	GuidedLearningHours    int `json:"guidedLearningHours"`
	TotalQualificationTime int `json:"totalQualificationTime"`

	generic.Window
}

// Funding returns the course's funding for a stream. Unlisted streams are unfunded.
func (q QualificationProfile) Funding(id generic.StreamID) StreamFunding {
	if f, ok := q.FundingStreams[id]; ok {
		return f
	}
	return StreamFunding{Rate: generic.ZeroMoney()}
}

// CompatibleWith reports the route compatibility flag relevant to a stream.
// Streams without a dedicated flag are treated as compatible.
func (q QualificationProfile) CompatibleWith(id generic.StreamID) bool {
	switch id {
	case Stream16To19:
		return q.Compatible16To19
	case StreamAdult, StreamFreeCoursesForJobs:
		return q.CompatibleASF
	case StreamApprenticeship:
		return q.CompatibleApprenticeship
	default:
		return true
	}
}

// =============================================================================
// SUBJECT - What the rule table evaluates
// =============================================================================

// Subject pairs a learner with the optional qualification being checked.
// A nil Qualification means the learner's own highest level is used.
type Subject struct {
	Learner       LearnerProfile
	Qualification *QualificationProfile
}

// RelevantLevel picks the course level when one is supplied, otherwise the
// learner's own highest qualification.
func (s Subject) RelevantLevel() (QualificationLevel, LevelSource) {
	if s.Qualification != nil && s.Qualification.Level != "" {
		return s.Qualification.Level, LevelSourceCourse
	}
	return s.Learner.QualificationLevel, LevelSourceLearner
}

// =============================================================================
// LEARNER SNAPSHOT
// =============================================================================

// Snapshot summarizes the learner alongside an assessment.
type Snapshot struct {
	AgeGroup                string          `json:"ageGroup"`
	Age                     generic.Measure `json:"age"`
	EmploymentStatus        string          `json:"employmentStatus"`
	HasUnemploymentBenefits bool            `json:"hasUnemploymentBenefits"`
	BenefitCount            int             `json:"benefitCount"`
	HasIncome               bool            `json:"hasIncome"`
	MonthlyIncome           generic.Money   `json:"monthlyIncome"`
	HighestQualification    string          `json:"highestQualification"`
	IsJointBenefitClaim     bool            `json:"isJointBenefitClaim"`
	IsUKResident            bool            `json:"isUKResident"`
	Postcode                string          `json:"postcode,omitempty"`
	Authority               string          `json:"authority,omitempty"`
}

const notSpecified = "Not specified"

func ageGroup(age generic.Measure, th Thresholds) string {
	switch {
	case age.Between(th.YoungPersonMinAge, th.YoungPersonMaxAge):
		return "Young Person (16-18)"
	case age.Between(th.AdultMinAge, th.YoungAdultMaxAge):
		return "Young Adult (19-24)"
	case age.AtLeast(th.YoungAdultMaxAge + 1):
		return "Adult (25+)"
	default:
		return "Unknown"
	}
}

func newSnapshot(l LearnerProfile, th Thresholds) Snapshot {
	s := Snapshot{
		AgeGroup:                ageGroup(l.Age, th),
		Age:                     l.Age,
		EmploymentStatus:        notSpecified,
		HasUnemploymentBenefits: l.Benefits.HasAny(th.QualifyingBenefits...),
		BenefitCount:            len(l.Benefits),
		HasIncome:               l.TakeHomePay.IsPositive(),
		MonthlyIncome:           l.TakeHomePay,
		HighestQualification:    notSpecified,
		IsJointBenefitClaim:     l.PartnerBenefitClaim,
		IsUKResident:            l.IsUKResident(),
		Postcode:                l.Postcode,
	}
	if l.EmploymentStatus != "" {
		s.EmploymentStatus = string(l.EmploymentStatus)
	}
	if l.QualificationLevel != "" {
		s.HighestQualification = string(l.QualificationLevel)
	}
	return s
}

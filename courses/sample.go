package courses

import (
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
)

// SampleCourses returns the demonstration catalogue.
func SampleCourses() []Course {
	return []Course{
		{
			QualificationProfile: funding.QualificationProfile{
				LearningAimRef:   "60003456",
				LearningAimTitle: "BTEC Level 3 National Diploma in Information Technology",
				Level:            funding.Level3,
				FundingStreams: map[generic.StreamID]funding.StreamFunding{
					funding.Stream16To19:              funded(2840),
					funding.StreamAdult:               funded(2840),
					funding.StreamAdvancedLearnerLoan: funded(2840),
					funding.StreamFreeCoursesForJobs:  funded(2840),
					funding.StreamApprenticeship:      unfunded(),
				},
				Compatible16To19:         true,
				CompatibleASF:            true,
				CompatibleApprenticeship: false,
				GuidedLearningHours:      720,
				TotalQualificationTime:   1080,
				Window: generic.Window{
					LastNewStart:     generic.NewDate(2025, 7, 31),
					CertificationEnd: generic.NewDate(2026, 12, 31),
				},
			},
			AwardOrgCode: "PEARSON",
			Status:       StatusActive,
			Sector:       "Digital",
		},
		{
			QualificationProfile: funding.QualificationProfile{
				LearningAimRef:   "50117729",
				LearningAimTitle: "Level 2 Certificate in Principles of Customer Service",
				Level:            funding.Level2,
				FundingStreams: map[generic.StreamID]funding.StreamFunding{
					funding.Stream16To19:              funded(1240),
					funding.StreamAdult:               funded(1240),
					funding.StreamAdvancedLearnerLoan: unfunded(),
					funding.StreamFreeCoursesForJobs:  funded(1240),
					funding.StreamApprenticeship:      funded(1240),
				},
				Compatible16To19:         true,
				CompatibleASF:            true,
				CompatibleApprenticeship: true,
				GuidedLearningHours:      155,
				TotalQualificationTime:   190,
				Window: generic.Window{
					LastNewStart:     generic.NewDate(2025, 8, 31),
					CertificationEnd: generic.NewDate(2026, 8, 31),
				},
			},
			AwardOrgCode: "NCFE",
			Status:       StatusActive,
			Sector:       "Business",
		},
	}
}

func funded(rate int64) funding.StreamFunding {
	return funding.StreamFunding{Funded: true, Rate: generic.NewMoney(rate)}
}

func unfunded() funding.StreamFunding {
	return funding.StreamFunding{Funded: false, Rate: generic.ZeroMoney()}
}

package domain

// Flag vocabulary raised by the sleep assessment.
const (
	FlagCircadianIrregularity      = "circadian_irregularity"
	FlagSocialJetlag               = "has_social_jetlag"
	FlagThermoregulationDisruption = "thermoregulation_disruption"
	FlagNoPreSleepRoutine          = "no_pre_sleep_routine"
	FlagPartnerOrChildDisruption   = "partner_or_child_disruption"
	FlagPossibleSleepApnea         = "possible_sleep_apnea"
	FlagRestlessMind               = "restless_mind"
	FlagShallowSleeper             = "shallow_sleeper"
	FlagBioOptimizer               = "bio_optimizer"
	FlagSleepsLessThan5Hours       = "sleeps_less_than_5_hours"
	FlagWeeknightUndersleeping     = "weeknight_undersleeping"
	FlagWakesUpTired               = "wakes_up_tired"
	FlagNightAwakening             = "night_awakening"
	FlagHighStress                 = "has_high_stress"
	FlagScreenBeforeBed            = "uses_screen_before_bed"
	FlagAlcoholBeforeBed           = "uses_alcohol_before_bed"
)

func opt(text string, flags ...string) Option {
	if flags == nil {
		flags = []string{}
	}
	return Option{Text: text, Flags: flags}
}

// SleepCatalogDocument returns the built-in sleep assessment, version QuizVersion.
func SleepCatalogDocument() CatalogDocument {
	return CatalogDocument{
		Version: QuizVersion,
		Questions: []Question{
			{
				ID:     "bedtime_variability",
				Prompt: "Do your bedtimes vary from day to day?",
				Options: []Option{
					opt("I sleep and wake at the same time every day"),
					opt("Slight variation (±1 hour)"),
					opt("Very different each night", FlagCircadianIrregularity),
				},
			},
			{
				ID:     "weekend_shift",
				Prompt: "On weekends, how different is your sleep schedule?",
				Options: []Option{
					opt("Same as weekdays"),
					opt("30–60 mins different"),
					opt("1–2 hours different", FlagSocialJetlag),
					opt("Over 2 hours different", FlagSocialJetlag),
				},
			},
			{
				ID:     "thermoregulation",
				Prompt: "Do you often wake up feeling too hot or sweating?",
				Options: []Option{
					opt("Never"),
					opt("Sometimes"),
					opt("Often", FlagThermoregulationDisruption),
					opt("Most nights", FlagThermoregulationDisruption),
				},
			},
			{
				ID:     "wind_down",
				Prompt: "Do you follow a regular wind-down routine before bed?",
				Options: []Option{
					opt("Yes, consistently"),
					opt("Sometimes"),
					opt("No routine at all", FlagNoPreSleepRoutine),
				},
			},
			{
				ID:     "shared_bed",
				Prompt: "Do you share your bed with anyone or anything?",
				Options: []Option{
					opt("No"),
					opt("Yes, a partner or pet", FlagPartnerOrChildDisruption),
					opt("Yes, a child or baby", FlagPartnerOrChildDisruption),
				},
			},
			{
				ID:     "snoring",
				Prompt: "Do you snore, or has someone told you that you snore?",
				Options: []Option{
					opt("No"),
					opt("Occasionally"),
					opt("Yes, frequently", FlagPossibleSleepApnea),
				},
			},
			{
				ID:     "sleep_goal",
				Prompt: "What brings you here today?",
				Options: []Option{
					opt("I have trouble falling asleep", FlagRestlessMind),
					opt("I wake up tired", FlagShallowSleeper),
					opt("I want to optimize my sleep", FlagBioOptimizer),
					opt("I have an irregular schedule", FlagCircadianIrregularity),
				},
			},
			{
				ID:     "sleep_duration",
				Prompt: "How many hours do you usually sleep per night?",
				Options: []Option{
					opt("< 5 hours", FlagSleepsLessThan5Hours),
					opt("5–6 hours", FlagWeeknightUndersleeping),
					opt("7–8 hours"),
					opt("More than 8 hours"),
				},
			},
			{
				ID:     "wake_feeling",
				Prompt: "How do you feel when you wake up in the morning?",
				Options: []Option{
					opt("Refreshed and alert"),
					opt("Somewhat tired"),
					opt("Still tired despite sleeping enough", FlagWakesUpTired),
					opt("Exhausted or foggy-headed", FlagWakesUpTired),
				},
			},
			{
				ID:     "night_awakenings",
				Prompt: "Do you wake up in the middle of the night?",
				Options: []Option{
					opt("Rarely"),
					opt("Once in a while"),
					opt("Almost every night", FlagNightAwakening),
					opt("Multiple times every night", FlagNightAwakening),
				},
			},
			{
				ID:     "stress_level",
				Prompt: "How would you rate your stress levels at night?",
				Options: []Option{
					opt("Low (1–2)"),
					opt("Moderate (3)"),
					opt("High (4–5)", FlagHighStress),
				},
			},
			{
				ID:     "screen_use",
				Prompt: "How often do you use screens in the hour before bed?",
				Options: []Option{
					opt("Never"),
					opt("Sometimes", FlagScreenBeforeBed),
					opt("Often", FlagScreenBeforeBed),
					opt("Always", FlagScreenBeforeBed),
				},
			},
			{
				ID:     "alcohol_use",
				Prompt: "How many nights per week do you have alcohol before bed?",
				Options: []Option{
					opt("0"),
					opt("1"),
					opt("2", FlagAlcoholBeforeBed),
					opt("3+", FlagAlcoholBeforeBed),
				},
			},
		},
		Sections: []Section{
			{ID: "about", Name: "About You", QuestionIDs: []string{"bedtime_variability", "weekend_shift", "thermoregulation"}},
			{ID: "routine", Name: "Sleep Routine", QuestionIDs: []string{"wind_down", "shared_bed", "snoring"}},
			{ID: "patterns", Name: "Sleep Patterns", QuestionIDs: []string{"sleep_goal", "sleep_duration", "wake_feeling"}},
			{ID: "lifestyle", Name: "Lifestyle Assessment", QuestionIDs: []string{"night_awakenings", "stress_level", "screen_use", "alcohol_use"}},
		},
	}
}

// SleepCatalog is the built-in catalog, validated.
func SleepCatalog() *Catalog {
	return MustCatalog(SleepCatalogDocument())
}

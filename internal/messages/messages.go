// Package messages holds the message pools shown to the user and the tier
// selection rules for motivational interventions.
package messages

import "math/rand"

// defaultPool is shown at the first escalation milestones.
var defaultPool = []string{
	"Hey! I noticed you've skipped a couple of wellness reminders. Small breaks make a big difference in your day. How about trying the next one?",
	"You're doing great work, but don't forget about yourself! You've missed a couple of self-care moments - your future self will thank you for the next one.",
	"Taking micro-breaks actually boosts productivity and creativity. You've skipped a few - let's get back on track with just one small step.",
	"I know you're focused on your work, but your body and mind need attention too. You've missed some reminders - the next one is your chance to shine!",
	"Consistency beats perfection! You've skipped a couple of wellness moments, but every next choice is a fresh start. You've got this!",
	"Self-care isn't selfish - it's smart! You've bypassed some important moments today. Ready to invest 2 minutes in yourself?",
	"Breaking the skip cycle is easier than you think. You've missed some wellness moments, but the next reminder is your comeback moment!",
	"Two minutes of self-care now saves hours of fatigue later. You've skipped some reminders - make the next one count!",
}

// seriousPool is shown once the daily skip count reaches SeriousTierThreshold.
var seriousPool = []string{
	"You've skipped several wellness reminders now. Your health is your wealth - let's prioritize it together. Just one small step?",
	"I know work is demanding, but you've missed multiple self-care moments. High performers take care of themselves too!",
	"You're on a skip streak, but let's start a wellness streak instead! Your body and mind are asking for attention.",
}

var encouragementPool = []string{
	"Awesome! You listened to your body and took action. That's what wellness champions do!",
	"Great choice! Every wellness decision you make is an investment in your best self.",
	"Perfect! You just proved that you can prioritize yourself. Keep this energy going!",
	"Wonderful! Your future self is already thanking you for this moment of self-care.",
	"That's the spirit! Small actions like this create big positive changes over time.",
}

var dailyPool = []string{
	"Start your day with intention - small wellness choices lead to big results!",
	"Today is full of opportunities to take care of yourself. Seize them!",
	"Tiny, consistent wellness habits create extraordinary transformations.",
	"Your energy and focus multiply when you prioritize self-care.",
	"Make wellness a priority today, not an afterthought.",
}

// Startup is the one-shot notification shown when the background engine starts.
const Startup = "Wellness reminders are now running in the background. Your first reminder will appear based on your schedule."

// SeriousTierThreshold is the daily skip count at which interventions switch
// to the serious pool.
const SeriousTierThreshold = 4

// ForSkipCount returns a motivational message for the given daily skip count.
// Pool choice is a pure function of the count; the pick within a pool is
// uniform-random.
func ForSkipCount(skips int) string {
	if skips >= SeriousTierThreshold {
		return pick(seriousPool)
	}
	return pick(defaultPool)
}

// Encouragement returns a message for a completion that followed skips.
func Encouragement() string {
	return pick(encouragementPool)
}

// DailyMotivation returns a generic start-of-day message.
func DailyMotivation() string {
	return pick(dailyPool)
}

// IsSerious reports whether the given skip count selects the serious pool.
func IsSerious(skips int) bool {
	return skips >= SeriousTierThreshold
}

func pick(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

// Pick chooses a uniform-random message from an arbitrary pool, falling back
// to a generic prompt when the pool is empty.
func Pick(pool []string) string {
	if len(pool) == 0 {
		return "Time for a wellness break."
	}
	return pick(pool)
}

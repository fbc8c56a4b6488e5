package greeting

import (
	"fmt"
	"time"
)

// Slot is a time-of-day window during which one autonomous greeting may go out.
type Slot string

const (
	SlotMorning Slot = "morning"
	SlotEvening Slot = "evening"
)

// Season buckets for template selection.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// slotOf returns the active greeting slot for t, or "" outside both windows.
// Morning covers 10:00–11:59, evening 16:00–18:59.
func slotOf(t time.Time) Slot {
	switch hour := t.Hour(); {
	case hour >= 10 && hour <= 11:
		return SlotMorning
	case hour >= 16 && hour <= 18:
		return SlotEvening
	default:
		return ""
	}
}

// seasonOf maps the calendar month to a season.
func seasonOf(t time.Time) Season {
	switch month := int(t.Month()); {
	case month >= 3 && month <= 5:
		return SeasonSpring
	case month >= 6 && month <= 8:
		return SeasonSummer
	case month >= 9 && month <= 11:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// sentinelKey identifies the already-greeted flag for t's calendar day and
// the given slot, e.g. "magonotec_greeting_2025-12-08_morning".
func sentinelKey(t time.Time, slot Slot) string {
	return fmt.Sprintf("magonotec_greeting_%s_%s", t.Format("2006-01-02"), slot)
}

// Seasonal greeting templates, two per season and slot.
var morningGreetings = map[Season][]string{
	SeasonWinter: {
		"おはようございます❄️ 今日は冷えるので、あたたかくしてお過ごしくださいね☕",
		"おはようございます⛄ 冷たい空気ですね。ゆっくり始めていきましょう✨",
	},
	SeasonSpring: {
		"おはようございます🌸 今日は気温が上がりそうです。気持ちよく過ごせますように✨",
		"おはようございます😊 花粉が気になる時期ですね。無理せず過ごしてくださいね🍃",
	},
	SeasonSummer: {
		"おはようございます🌻 暑くなりそうです。こまめに水分とってくださいね💧",
		"おはようございます☀️ 日差しが強いので、外出するときは気をつけてくださいね✨",
	},
	SeasonAutumn: {
		"おはようございます🍁 朝は少し涼しいですね。羽織るものがあると安心ですよ😊",
		"おはようございます✨ 空気が乾燥してきました。喉を大切にしてくださいね🌿",
	},
}

var eveningGreetings = map[Season][]string{
	SeasonWinter: {
		"今日も一日おつかれさまでした❄️ あたたかくしてお休みくださいね😊",
		"日が暮れるのが早いですね⛄ ゆっくり過ごしてくださいね✨",
	},
	SeasonSpring: {
		"今日もおつかれさまでした🌸 夕方は少し冷えますので気をつけてくださいね🍃",
		"おつかれさまです😊 風が強い日みたいなので、外出時は気をつけてくださいね🌼",
	},
	SeasonSummer: {
		"今日も暑かったですね🌻 夕方でも水分とると楽になりますよ💧",
		"蒸し暑い一日でしたね💦 お風呂でゆっくりするのも良いかもしれません😊",
	},
	SeasonAutumn: {
		"今日もおつかれさまでした🍁 夕方の風が気持ちいいですね✨",
		"乾燥する季節ですね🌙 あたたかい飲み物でほっとしてくださいね🍵",
	},
}

func templatesFor(slot Slot, season Season) []string {
	if slot == SlotMorning {
		return morningGreetings[season]
	}
	return eveningGreetings[season]
}

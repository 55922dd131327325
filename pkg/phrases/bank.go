package phrases

import "github.com/ngoyal88/quip/pkg/humor"

var backstop = map[humor.Level][]string{
	humor.LevelMild: {
		"Another day, another log line.",
		"Logged and noted.",
		"The console appreciates your input.",
	},
	humor.LevelMedium: {
		"Ah yes, a log. Very informative. Truly.",
		"Somewhere, a debugger sheds a single tear.",
		"This log line has been filed under 'probably fine'.",
	},
	humor.LevelSavage: {
		"Printing things won't fix your architecture.",
		"Bold of you to call this debugging.",
		"The logs are screaming. Nobody is listening.",
	},
}

func defaultEntries() []Entry {
	return []Entry{
		{Category: CategoryError, Level: humor.LevelMild, Phrases: []string{
			"Oops! Even the best code has bad days.",
			"Errors are just surprise features.",
			"Deep breaths. It's only production.",
		}},
		{Category: CategoryError, Level: humor.LevelMedium, Phrases: []string{
			"Have you tried turning it off and on again?",
			"Works on my machine, though.",
			"Another bug has entered the chat.",
		}},
		{Category: CategoryError, Level: humor.LevelSavage, Phrases: []string{
			"Your code just filed for divorce.",
			"Stack Overflow can't save you now.",
			"This error has better error handling than your code.",
		}},
		{Category: CategoryError, Level: humor.LevelMedium, Triggers: []string{"timeout", "timed out"}, Phrases: []string{
			"Still waiting... like a dev on a code review.",
			"The server is taking a little nap.",
		}},
		{Category: CategoryError, Level: humor.LevelSavage, Triggers: []string{"null", "undefined", "nil pointer"}, Phrases: []string{
			"Nothing to see here. Literally nothing.",
			"The billion-dollar mistake strikes again.",
		}},
		{Category: CategoryError, Level: humor.LevelMild, Triggers: []string{"404", "not found"}, Phrases: []string{
			"It's not lost, it's on an adventure.",
		}},

		{Category: CategorySuccess, Level: humor.LevelMild, Phrases: []string{
			"Nice work! Someone deserves a coffee.",
			"Success! The computer is pleased.",
			"Look at you, shipping things.",
		}},
		{Category: CategorySuccess, Level: humor.LevelMedium, Phrases: []string{
			"It worked? Quick, commit before it changes its mind.",
			"Success on the first try. Suspicious.",
		}},
		{Category: CategorySuccess, Level: humor.LevelSavage, Phrases: []string{
			"Even a broken clock is right twice a day.",
			"Don't get used to this feeling.",
		}},

		{Category: CategoryData, Level: humor.LevelMild, Phrases: []string{
			"That's some nicely shaped data.",
			"Data, data everywhere.",
		}},
		{Category: CategoryData, Level: humor.LevelMedium, Phrases: []string{
			"Ah, the classic 'log the whole object' strategy.",
			"That's a lot of curly braces for one Tuesday.",
		}},
		{Category: CategoryData, Level: humor.LevelSavage, Phrases: []string{
			"Dumping the entire object graph won't make it make sense.",
			"JSON this deep needs a lifeguard.",
		}},
		{Category: CategoryData, Level: humor.LevelMedium, Triggers: []string{"array"}, Phrases: []string{
			"Lists all the way down.",
		}},
		{Category: CategoryData, Level: humor.LevelMild, Triggers: []string{"url"}, Phrases: []string{
			"Off to the internet we go.",
		}},

		{Category: CategoryGeneral, Level: humor.LevelMild, Phrases: []string{
			"Keep calm and log on.",
			"A wild log appeared!",
		}},
		{Category: CategoryGeneral, Level: humor.LevelMedium, Phrases: []string{
			"Printf debugging: a timeless classic.",
			"console.log: the developer's diary.",
		}},
		{Category: CategoryGeneral, Level: humor.LevelSavage, Phrases: []string{
			"Logging won't save you, but it's cute that you try.",
			"Your logs read like a cry for help.",
		}},
		{Category: CategoryGeneral, Level: humor.LevelSavage, Triggers: []string{"todo", "fixme", "hack"}, Phrases: []string{
			"TODO: write code that doesn't need TODOs.",
		}},
	}
}

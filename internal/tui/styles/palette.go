package styles

// DefaultTheme is the baseline palette.
var DefaultTheme = Theme{
	Name:          "default",
	AuthorPalette: append([]string(nil), AuthorColorPalette...),
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
	},
	Message: MessageColors{
		Body:    "252",
		Time:    "243",
		Link:    "81",
		Service: "214",
		Photo:   "180",
	},
	Selection: SelectionColors{
		TextBackground: "25",
		TextForeground: "231",
		ItemBackground: "237",
		Check:          "75",
	},
	Chrome: ChromeColors{
		Header:   "111",
		Footer:   "110",
		DatePill: "238",
		DateText: "250",
	},
}

// DarkTheme trades contrast for a dimmer canvas.
var DarkTheme = Theme{
	Name:          "dark",
	AuthorPalette: append([]string(nil), AuthorColorPalette...),
	Base: BaseColors{
		Background: "232",
		Foreground: "250",
		Muted:      "241",
		Accent:     "69",
	},
	Message: MessageColors{
		Body:    "250",
		Time:    "240",
		Link:    "74",
		Service: "172",
		Photo:   "137",
	},
	Selection: SelectionColors{
		TextBackground: "24",
		TextForeground: "255",
		ItemBackground: "235",
		Check:          "69",
	},
	Chrome: ChromeColors{
		Header:   "67",
		Footer:   "66",
		DatePill: "236",
		DateText: "245",
	},
}

// LightTheme is for light terminal backgrounds.
var LightTheme = Theme{
	Name:          "light",
	AuthorPalette: []string{"25", "26", "27", "54", "55", "56", "90", "91", "127", "128", "130", "94"},
	Base: BaseColors{
		Background: "255",
		Foreground: "235",
		Muted:      "244",
		Accent:     "26",
	},
	Message: MessageColors{
		Body:    "235",
		Time:    "245",
		Link:    "25",
		Service: "130",
		Photo:   "94",
	},
	Selection: SelectionColors{
		TextBackground: "153",
		TextForeground: "16",
		ItemBackground: "254",
		Check:          "26",
	},
	Chrome: ChromeColors{
		Header:   "24",
		Footer:   "60",
		DatePill: "252",
		DateText: "238",
	},
}

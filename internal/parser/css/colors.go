package css

import (
	"strings"

	"bennypowers.dev/embedls/internal/collections"
)

var (
	// namedColors are the CSS named color keywords
	namedColors = collections.FoldedStrings(
		"transparent", "black", "white", "red", "green",
		"blue", "yellow", "cyan", "magenta", "gray",
		"grey", "maroon", "purple", "fuchsia", "lime",
		"olive", "navy", "teal", "aqua", "orange",
		"aliceblue", "antiquewhite", "aquamarine", "azure",
		"beige", "bisque", "blanchedalmond", "blueviolet",
		"brown", "burlywood", "cadetblue", "chartreuse",
		"chocolate", "coral", "cornflowerblue", "cornsilk",
		"crimson", "darkblue", "darkcyan", "darkgoldenrod",
		"darkgray", "darkgrey", "darkgreen", "darkkhaki",
		"darkmagenta", "darkolivegreen", "darkorange", "darkorchid",
		"darkred", "darksalmon", "darkseagreen", "darkslateblue",
		"darkslategray", "darkslategrey", "darkturquoise", "darkviolet",
		"deeppink", "deepskyblue", "dimgray", "dimgrey",
		"dodgerblue", "firebrick", "floralwhite", "forestgreen",
		"gainsboro", "ghostwhite", "gold", "goldenrod",
		"greenyellow", "honeydew", "hotpink", "indianred",
		"indigo", "ivory", "khaki", "lavender",
		"lavenderblush", "lawngreen", "lemonchiffon", "lightblue",
		"lightcoral", "lightcyan", "lightgoldenrodyellow", "lightgray",
		"lightgrey", "lightgreen", "lightpink", "lightsalmon",
		"lightseagreen", "lightskyblue", "lightslategray", "lightslategrey",
		"lightsteelblue", "lightyellow", "limegreen", "linen",
		"mediumaquamarine", "mediumblue", "mediumorchid", "mediumpurple",
		"mediumseagreen", "mediumslateblue", "mediumspringgreen", "mediumturquoise",
		"mediumvioletred", "midnightblue", "mintcream", "mistyrose",
		"moccasin", "navajowhite", "oldlace", "olivedrab",
		"orangered", "orchid", "palegoldenrod", "palegreen",
		"paleturquoise", "palevioletred", "papayawhip", "peachpuff",
		"peru", "pink", "plum", "powderblue",
		"rebeccapurple", "rosybrown", "royalblue", "saddlebrown",
		"salmon", "sandybrown", "seagreen", "seashell",
		"sienna", "silver", "skyblue", "slateblue",
		"slategray", "slategrey", "snow", "springgreen",
		"steelblue", "tan", "thistle", "tomato",
		"turquoise", "violet", "wheat", "whitesmoke",
		"yellowgreen",
	)

	colorFunctions = collections.FoldedStrings("rgb", "rgba", "hsl", "hsla", "hwb")
)

// IsNamedColor checks if a value is a named CSS color
func IsNamedColor(value string) bool {
	return collections.HasFolded(namedColors, strings.TrimSpace(value))
}

// IsColorFunction checks if name is a color function such as rgb or hsla
func IsColorFunction(name string) bool {
	return collections.HasFolded(colorFunctions, name)
}

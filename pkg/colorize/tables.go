package colorize

// materialColorName maps a PDMS/RVM material id to a color name. Material
// id 0 falls back to the default color; an id absent from this table keeps
// the color inherited from the enclosing group (the default at top level).
var materialColorName = map[uint32]string{
	1: "Black", 2: "Red", 3: "Orange", 4: "Yellow", 5: "Green", 6: "Cyan",
	7: "Blue", 8: "Magenta", 9: "Brown", 10: "White", 11: "Salmon",
	12: "LightGrey", 13: "Grey", 14: "Plum", 15: "WhiteSmoke", 16: "Maroon",
	17: "SpringGreen", 18: "Wheat", 19: "Gold", 20: "RoyalBlue",
	21: "LightGold", 22: "DeepPink", 23: "ForestGreen", 24: "BrightOrange",
	25: "Ivory", 26: "Chocolate", 27: "SteelBlue", 28: "White",
	29: "Midnight", 30: "NavyBlue", 31: "Pink", 32: "CoralRed",
	33: "Black", 34: "Red", 35: "Orange", 36: "Yellow", 37: "Green",
	38: "Cyan", 39: "Blue", 40: "Magenta", 41: "Brown", 42: "White",
	43: "Salmon", 44: "LightGrey", 45: "Grey", 46: "Plum",
	47: "WhiteSmoke", 48: "Maroon", 49: "SpringGreen", 50: "Wheat",
	51: "Gold", 52: "RoyalBlue", 53: "LightGold", 54: "DeepPink",
	55: "ForestGreen", 56: "BrightOrange", 57: "Ivory", 58: "Chocolate",
	59: "SteelBlue", 60: "White", 61: "Midnight", 62: "NavyBlue",
	63: "Pink", 64: "CoralRed",
	206: "Black", 207: "White", 208: "WhiteSmoke", 209: "Ivory",
	210: "Grey", 211: "LightGrey", 212: "DarkGrey", 213: "DarkSlate",
	214: "Red", 215: "BrightRed", 216: "CoralRed", 217: "Tomato",
	218: "Plum", 219: "DeepPink", 220: "Pink", 221: "Salmon",
	222: "Orange", 223: "BrightOrange", 224: "OrangeRed", 225: "Maroon",
	226: "Yellow", 227: "Gold", 228: "LightYellow", 229: "LightGold",
	230: "YellowGreen", 231: "SpringGreen", 232: "Green",
	233: "ForestGreen", 234: "DarkGreen", 235: "Cyan", 236: "Turquoise",
	237: "Aquamarine", 238: "Blue", 239: "RoyalBlue", 240: "NavyBlue",
	241: "PowderBlue", 242: "Midnight", 243: "SteelBlue", 244: "Indigo",
	245: "Mauve", 246: "Violet", 247: "Magenta", 248: "Beige",
	249: "Wheat", 250: "Tan", 251: "SandyBrown", 252: "Brown",
	253: "Khaki", 254: "Chocolate", 255: "DarkBrown",
}

// namedColorRGB maps a color name (plus a lowercase alias) to its packed
// 0xRRGGBB value.
var namedColorRGB = map[string]uint32{
	"Blue": 0x0000cc, "blue": 0x0000cc,
	"Pink": 0xcc919e, "pink": 0xcc919e,
	"SteelBlue": 0x4782b5, "steelblue": 0x4782b5,
	"SandyBrown": 0xf4a55e, "sandybrown": 0xf4a55e,
	"Black": 0x000000, "black": 0x000000,
	"DarkGrey": 0x518c8c, "darkgrey": 0x518c8c,
	"RoyalBlue": 0x4775ff, "royalblue": 0x4775ff,
	"White": 0xffffff, "white": 0xffffff,
	"Brown": 0xcc2b2b, "brown": 0xcc2b2b,
	"Ivory": 0xedede0, "ivory": 0xedede0,
	"DarkGreen": 0x2d4f2d, "darkgreen": 0x2d4f2d,
	"Salmon": 0xf97f70, "salmon": 0xf97f70,
	"BrightOrange": 0xffa500, "brightorange": 0xffa500,
	"Chocolate": 0xed7521, "chocolate": 0xed7521,
	"BrightRed": 0xff0000, "brightred": 0xff0000,
	"Plum": 0x8c668c, "plum": 0x8c668c,
	"ForestGreen": 0x238e23, "forestgreen": 0x238e23,
	"LightGold": 0xede8aa, "lightgold": 0xede8aa,
	"CoralRed": 0xcc5b44, "coralred": 0xcc5b44,
	"Indigo": 0x330066, "indigo": 0x330066,
	"BlueGrey": 0x687c93, "bluegrey": 0x687c93,
	"Gold": 0xedc933, "gold": 0xedc933,
	"LightYellow": 0xededd1, "lightyellow": 0xededd1,
	"PowderBlue": 0xafe0e5, "powderblue": 0xafe0e5,
	"LightGrey": 0xbfbfbf, "lightgrey": 0xbfbfbf,
	"Yellow": 0xcccc00, "yellow": 0xcccc00,
	"DarkBrown": 0x8c4414, "darkbrown": 0x8c4414,
	"DeepPink": 0xed1189, "deeppink": 0xed1189,
	"Mauve": 0x660099, "mauve": 0x660099,
	"Magenta": 0xdd00dd, "magenta": 0xdd00dd,
	"Tomato": 0xff6347, "tomato": 0xff6347,
	"Midnight": 0x2d2d4f, "midnight": 0x2d2d4f,
	"Orange": 0xed9900, "orange": 0xed9900,
	"YellowGreen": 0x99cc33, "yellowgreen": 0x99cc33,
	"Aquamarine": 0x75edc6, "aquamarine": 0x75edc6,
	"DarkSlate": 0x2d4f4f, "darkslate": 0x2d4f4f,
	"Red": 0xcc0000, "red": 0xcc0000,
	"Khaki": 0x9e9e5e, "khaki": 0x9e9e5e,
	"Wheat": 0xf4ddb2, "wheat": 0xf4ddb2,
	"Cyan": 0x00eded, "cyan": 0x00eded,
	"Turquoise": 0x00bfcc, "turquoise": 0x00bfcc,
	"SpringGreen": 0x00ff7f, "springgreen": 0x00ff7f,
	"Grey": 0xa8a8a8, "grey": 0xa8a8a8,
	"Green": 0x00cc00, "green": 0x00cc00,
	"Beige": 0xf4f4db, "beige": 0xf4f4db,
	"OrangeRed": 0xff7f00, "orangered": 0xff7f00,
	"Tan": 0xdb9370, "tan": 0xdb9370,
	"WhiteSmoke": 0xf4f4f4, "whitesmoke": 0xf4f4f4,
	"Maroon": 0x8e236b, "maroon": 0x8e236b,
	"NavyBlue": 0x00007f, "navyblue": 0x00007f,
	"Violet": 0xed82ed, "violet": 0xed82ed,
}

const defaultColorName = "Default"
const defaultColorRGB = 0x787878

package catalog

var studioPrices = map[string]string{
	// Nail bar
	"manicure spa":   "$250 MXN",
	"manicure ruso":  "$180 MXN",
	"uñas acrílicas": "$250 MXN",
	"uñas soft gel":  "$350 MXN",
	"gelish":         "$180 MXN",
	"rubber":         "$200 MXN",
	"pedicure spa":   "$400 MXN",
	"acripie":        "$300 MXN",
	"gelish en pies": "$200 MXN",

	// Lash studio
	"pestañas clásicas":        "$400 MXN",
	"pestañas rimel":           "$450 MXN",
	"pestañas híbridas":        "$500 MXN",
	"pestañas mojado":          "$450 MXN",
	"volumen hawaiano":         "$600 MXN",
	"volumen ruso":             "$600 MXN",
	"volumen americano":        "$600 MXN",
	"pestañas efecto especial": "$600 MXN",
	"mega volumen":             "$700 MXN",

	// Beauty lab
	"bblips":            "$500 MXN",
	"bb glow":           "$550 MXN",
	"relleno de labios": "$4900 MXN",

	// Brows
	"lifting de pestañas":   "$350 MXN",
	"lifting de cejas":      "$280 MXN",
	"diseño de cejas hd":    "$350 MXN",
	"diseño de cejas 4k":    "$200 MXN",
	"consulta microblading": "$200 MXN",
	"microblading":          "$2000 a $2800 MXN",
	"microshading pro":      "$2300 a $2500 MXN",

	// Hair
	"baño de color":               "$400 MXN",
	"tinte":                       "$600 MXN",
	"matiz":                       "$400 MXN",
	"retoque de caña":             "$650 MXN",
	"diseño de color":             "$1500 MXN en adelante",
	"corte de dama":               "$350 MXN",
	"keratina":                    "$900 MXN en adelante",
	"nanoplastia japonesa":        "$800 MXN en adelante",
	"botox capilar":               "$700 MXN en adelante",
	"tratamiento capilar premium": "$550 MXN",

	// Waxing, single zones
	"bigote":             "$80 MXN",
	"cejas":              "$100 MXN",
	"patilla":            "$200 MXN",
	"barbilla":           "$80 MXN",
	"mejillas":           "$150 MXN",
	"axila":              "$130 MXN",
	"piernas completas":  "$550 MXN",
	"medias piernas":     "$300 MXN",
	"bikini":             "$300 MXN",
	"bikini brasileño":   "$350 MXN",
	"línea interglúeta":  "$150 MXN",
	"fosas nasales":      "$80 MXN",
	"espalda completa":   "$330 MXN",
	"media espalda baja": "$200 MXN",
	"abdomen":            "$200 MXN",
	"brazos completos":   "$330 MXN",
	"medios brazos":      "$200 MXN",
	"glúteos media":      "$150 MXN",
	"glúteos completos":  "$200 MXN",

	// Waxing packages (sessions)
	"cara completa 1":    "$550 MXN",
	"cara completa 3":    "$1320 MXN",
	"cara completa 5":    "$1650 MXN",
	"piernas y brazos 1": "$650 MXN",
	"piernas y brazos 3": "$1560 MXN",
	"piernas y brazos 5": "$1950 MXN",
	"cuerpo completo 1":  "$1900 MXN",
	"cuerpo completo 3":  "$2640 MXN",
	"cuerpo completo 5":  "$2750 MXN",
}

// "cejas" is both a waxing zone and the common way to ask for a brow design; the alias
// wins, so waxing is reached through "depilación cejas".
var studioSynonyms = map[string]string{
	// Nails
	"uñas":                "uñas acrílicas",
	"acrílicas":           "uñas acrílicas",
	"uñas acrilicas":      "uñas acrílicas",
	"soft gel":            "uñas soft gel",
	"uñas soft":           "uñas soft gel",
	"gelish manos":        "gelish",
	"gelish pies":         "gelish en pies",
	"gel para pies":       "gelish en pies",
	"gelish pedicure":     "gelish en pies",
	"pedicure con gelish": "gelish en pies",
	"gelish spa":          "gelish",
	"rubber base":         "rubber",
	"rubber nails":        "rubber",
	"acri pies":           "acripie",
	"acripie spa":         "acripie",
	"spa de pies":         "pedicure spa",

	// Lashes
	"pestañas naturales": "pestañas clásicas",
	"clásicas":           "pestañas clásicas",
	"rimel":              "pestañas rimel",
	"efecto rimel":       "pestañas rimel",
	"híbridas":           "pestañas híbridas",
	"efecto mojado":      "pestañas mojado",
	"mojado":             "pestañas mojado",
	"volumen":            "volumen ruso",
	"volumen ruso":       "volumen ruso",
	"volumen hawaiano":   "volumen hawaiano",
	"volumen americano":  "volumen americano",
	"mega volumen":       "mega volumen",
	"efecto anime":       "pestañas efecto especial",
	"efecto wispy":       "pestañas efecto especial",
	"efecto bratz":       "pestañas efecto especial",
	"efecto coreano":     "pestañas efecto especial",
	"efecto fox":         "pestañas efecto especial",
	"fox eye":            "pestañas efecto especial",

	// Brows
	"cejas":              "diseño de cejas hd",
	"diseño de cejas":    "diseño de cejas hd",
	"diseño hd":          "diseño de cejas hd",
	"cejas 4k":           "diseño de cejas 4k",
	"diseño 4k":          "diseño de cejas 4k",
	"lifting de cejas":   "lifting de cejas",
	"laminado de cejas":  "lifting de cejas",
	"microblading cejas": "microblading",
	"microshading":       "microshading pro",
	"consulta de cejas":  "consulta microblading",

	// Lips and facials
	"bb lips":           "bblips",
	"bblips":            "bblips",
	"bb glow":           "bb glow",
	"bb glow facial":    "bb glow",
	"relleno de labios": "relleno de labios",

	// Hair
	"baño de color":       "baño de color",
	"tinte":               "tinte",
	"matiz":               "matiz",
	"retoque":             "retoque de caña",
	"retoque de canas":    "retoque de caña",
	"diseño de color":     "diseño de color",
	"corte":               "corte de dama",
	"corte de mujer":      "corte de dama",
	"keratina":            "keratina",
	"nanoplastia":         "nanoplastia japonesa",
	"botox capilar":       "botox capilar",
	"tratamiento capilar": "tratamiento capilar premium",

	// Waxing zones
	"depilación bigote":         "bigote",
	"depilación cejas":          "cejas",
	"depilación patilla":        "patilla",
	"depilación barbilla":       "barbilla",
	"depilación mejillas":       "mejillas",
	"depilación axila":          "axila",
	"depilación brazos":         "brazos completos",
	"depilación medios brazos":  "medios brazos",
	"depilación piernas":        "piernas completas",
	"depilación medias piernas": "medias piernas",
	"depilación bikini":         "bikini",
	"bikini brasileño":          "bikini brasileño",
	"depilación brasileña":      "bikini brasileño",
	"línea interglútea":         "línea interglúeta",
	"interglútea":               "línea interglúeta",
	"fosas":                     "fosas nasales",
	"fosas nasales":             "fosas nasales",
	"espalda completa":          "espalda completa",
	"media espalda":             "media espalda baja",
	"espalda baja":              "media espalda baja",
	"abdomen":                   "abdomen",
	"glúteos":                   "glúteos completos",
	"glúteos media":             "glúteos media",

	// Waxing packages
	"cara completa 1 sesión":     "cara completa 1",
	"cara completa paquete":      "cara completa 1",
	"piernas y brazos 1 sesión":  "piernas y brazos 1",
	"piernas completas y brazos": "piernas y brazos 1",
	"cuerpo completo":            "cuerpo completo 1",
	"cuerpo completo 1 sesión":   "cuerpo completo 1",
	"paquete cuerpo completo":    "cuerpo completo 1",
}

package catalog

// defaultCharacters - 원격 카탈로그가 없거나 실패했을 때 쓰는 내장 목록.
// 다섯 개 스타일 카테고리를 모두 커버한다.
func defaultCharacters() []CharacterTemplate {
	return []CharacterTemplate{
		{
			ID:          "sailor-moon",
			Name:        "Sailor Moon",
			Style:       StyleAnime,
			Costume:     "detailed blue sailor costume with white collar and red bow",
			Accessories: "moon tiara, white gloves, red ribbons in hair",
			Hair:        "blonde twin tails with red ribbons",
			Pose:        "magical girl pose with hand on hip",
			Description: "Classic anime magical girl with sailor uniform",
			Colors:      []string{"blue", "white", "red", "yellow"},
		},
		{
			ID:          "wonder-woman",
			Name:        "Wonder Woman",
			Style:       StyleSuperhero,
			Costume:     "red and gold armor with blue star-spangled briefs",
			Accessories: "golden tiara, lasso of truth, silver bracelets",
			Hair:        "long dark hair",
			Pose:        "heroic power pose with arms crossed",
			Description: "Amazonian warrior princess with iconic superhero costume",
			Colors:      []string{"red", "gold", "blue", "silver"},
		},
		{
			ID:          "dva",
			Name:        "D.Va",
			Style:       StyleGaming,
			Costume:     "white and pink mech pilot suit with blue accents",
			Accessories: "gaming headset, pink bunny ears, blue visor",
			Hair:        "brown hair in twin tails",
			Pose:        "gaming victory pose",
			Description: "Professional gamer and mech pilot from Overwatch",
			Colors:      []string{"white", "pink", "blue", "brown"},
		},
		{
			ID:          "harley-quinn",
			Name:        "Harley Quinn",
			Style:       StyleComic,
			Costume:     "red and black jester outfit with diamond patterns",
			Accessories: "red and black hair, white face paint, mallet",
			Hair:        "red and black pigtails",
			Pose:        "mischievous pose with mallet",
			Description: "Chaotic villain with jester-inspired costume",
			Colors:      []string{"red", "black", "white"},
		},
		{
			ID:          "zelda",
			Name:        "Princess Zelda",
			Style:       StyleFantasy,
			Costume:     "elegant white and gold dress with royal symbols",
			Accessories: "golden crown, royal jewelry, magical aura",
			Hair:        "blonde hair in elegant style",
			Pose:        "regal pose with hand extended",
			Description: "Royal princess with magical powers and elegant attire",
			Colors:      []string{"white", "gold", "blue", "green"},
		},
		{
			ID:          "power-girl",
			Name:        "Power Girl",
			Style:       StyleSuperhero,
			Costume:     "white costume with blue cape and red S symbol",
			Accessories: "blue cape, red boots, confident expression",
			Hair:        "blonde hair in ponytail",
			Pose:        "superhero flying pose",
			Description: "Powerful superhero with classic costume design",
			Colors:      []string{"white", "blue", "red"},
		},
		{
			ID:          "2b",
			Name:        "2B",
			Style:       StyleGaming,
			Costume:     "black and white maid outfit with combat elements",
			Accessories: "white blindfold, black gloves, combat boots",
			Hair:        "white hair in elegant style",
			Pose:        "combat ready pose",
			Description: "Android combat unit with elegant maid-inspired design",
			Colors:      []string{"black", "white", "silver"},
		},
		{
			ID:          "mikasa",
			Name:        "Mikasa Ackerman",
			Style:       StyleAnime,
			Costume:     "complete Survey Corps uniform with ODM gear harness",
			Accessories: "iconic red knitted scarf around neck, ODM gear with gas tanks and blade holders, brown leather straps and buckles",
			Hair:        "short black bob with bangs",
			Pose:        "determined warrior stance",
			Description: "Elite soldier from Attack on Titan with iconic red scarf and ODM gear",
			Colors:      []string{"brown", "white", "red", "black", "silver", "gray"},
		},
		{
			ID:          "catwoman",
			Name:        "Catwoman",
			Style:       StyleComic,
			Costume:     "black leather catsuit with cat ears",
			Accessories: "black mask, whip, cat ears, claws",
			Hair:        "black hair",
			Pose:        "stealthy cat pose",
			Description: "Feline-themed thief with sleek black costume",
			Colors:      []string{"black", "silver"},
		},
		{
			ID:          "ahri",
			Name:        "Ahri",
			Style:       StyleGaming,
			Costume:     "elegant white and gold outfit with fox elements",
			Accessories: "nine fox tails, golden jewelry, magical orbs",
			Hair:        "white hair with fox ears",
			Pose:        "mystical fox pose",
			Description: "Nine-tailed fox spirit with elegant magical attire",
			Colors:      []string{"white", "gold", "blue"},
		},
	}
}

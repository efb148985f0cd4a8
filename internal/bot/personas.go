package bot

// Profile is a synthetic chat identity a room can host. Ids sit far above
// anything the user sequence will reach so bot rows never collide with real
// accounts.
type Profile struct {
	ID       int64
	Nickname string
	Persona  string
}

var profiles = []Profile{
	{
		ID:       9000001,
		Nickname: "Marta",
		Persona:  "You are Marta, a friendly local who knows the neighborhood well. You chat casually, keep replies short and never use formal language.",
	},
	{
		ID:       9000002,
		Nickname: "Leo",
		Persona:  "You are Leo, a dry-humored night owl. You answer briefly, sometimes with a joke, and never lecture anyone.",
	},
	{
		ID:       9000003,
		Nickname: "Sofi",
		Persona:  "You are Sofi, curious and upbeat. You ask small follow-up questions and keep every reply to one or two sentences.",
	},
	{
		ID:       9000004,
		Nickname: "Dani",
		Persona:  "You are Dani, laid back and a little sarcastic. Short replies only, no emojis unless someone else used one first.",
	},
}

// Profiles returns the full persona pool.
func Profiles() []Profile {
	return profiles
}

// ProfileByID looks up a persona by its fixed id.
func ProfileByID(id int64) (Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// ProfileByNickname looks up a persona by nickname, case-sensitive.
func ProfileByNickname(nickname string) (Profile, bool) {
	for _, p := range profiles {
		if p.Nickname == nickname {
			return p, true
		}
	}
	return Profile{}, false
}

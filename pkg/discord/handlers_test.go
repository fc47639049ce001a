package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestInteractionUserID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "u1"}},
	}}
	assert.Equal(t, "u1", interactionUserID(guild))

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "u2"},
	}}
	assert.Equal(t, "u2", interactionUserID(dm))

	empty := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}
	assert.Empty(t, interactionUserID(empty))
}

func TestModalValues(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: registerModalID,
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "name", Value: "Jane Doe"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "age", Value: "21"},
			}},
		},
	}

	values := modalValues(data)

	assert.Equal(t, "Jane Doe", values["name"])
	assert.Equal(t, "21", values["age"])
}

func TestOptionLookups(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(250)},
		{Name: "rank", Type: discordgo.ApplicationCommandOptionString, Value: "Gold"},
	}

	assert.Equal(t, int64(250), optionInt(options, "amount"))
	assert.Equal(t, "Gold", optionString(options, "rank"))
	assert.Zero(t, optionInt(options, "missing"))
	assert.Empty(t, optionString(options, "missing"))
}

func TestCommandDefinitionsCoverEveryOperation(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range commandDefinitions() {
		names[cmd.Name] = true
	}

	for _, expected := range []string{"register", "account", "withdraw", "transfer", "admin", "rank", "reglist", "setup"} {
		assert.True(t, names[expected], "command %s is registered", expected)
	}
}

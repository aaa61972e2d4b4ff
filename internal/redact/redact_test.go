package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrub_Email(t *testing.T) {
	out, kinds := Scrub("my email is dana@example.com, please help")

	assert.Equal(t, "my email is [email], please help", out)
	assert.Equal(t, []Kind{KindEmail}, kinds)
}

func TestScrub_Phone(t *testing.T) {
	out, kinds := Scrub("call me at 555-867-5309 tomorrow")

	assert.Equal(t, "call me at [phone] tomorrow", out)
	assert.Equal(t, []Kind{KindPhone}, kinds)
}

func TestScrub_CreditCard(t *testing.T) {
	out, kinds := Scrub("card 4111111111111111 expires soon")

	assert.Equal(t, "card [card] expires soon", out)
	assert.Equal(t, []Kind{KindCreditCard}, kinds)
}

func TestScrub_IPAddress(t *testing.T) {
	out, kinds := Scrub("the server at 192.168.1.10 is down")

	assert.Equal(t, "the server at [ip] is down", out)
	assert.Equal(t, []Kind{KindIPAddress}, kinds)
}

func TestScrub_MultipleKinds(t *testing.T) {
	out, kinds := Scrub("reach dana@example.com or 555-867-5309")

	assert.Equal(t, "reach [email] or [phone]", out)
	assert.Len(t, kinds, 2)
}

func TestScrub_CleanText(t *testing.T) {
	out, kinds := Scrub("explain how quicksort partitions the input")

	assert.Equal(t, "explain how quicksort partitions the input", out)
	assert.Empty(t, kinds)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("mail dana@example.com"))
	assert.False(t, Contains("what is a binary heap"))
}

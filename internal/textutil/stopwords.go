package textutil

import "strings"

// The record source serves lorem-ipsum style Latin titles, so the stopword
// set covers Latin function words (conjunctions, particles, prepositions,
// pronouns, adverbs) rather than English ones.
const stopwordList = `
a ab abs ac ad adeo adhuc aliquis aliquid aliquo aliqua aliud alius alter altera alterum
an ante apud at atque aut autem
cum cur
de del deinde denique dum
e ed ex
enim ergo etiam et
haud hic haec hoc hinc huc
iam ibi idem igitur ille illa illud illum illam illis illos illas illorum illarum
in infra inter intra
is ea id eius ei eum eam eo eos eas iis
ita itaque iterum
iuxta
magis minus modo
nam ne nec neque nempe non nunc
ob omnino
per post prae praeter pro propter
quam quamquam quando quare quasi quem quemadmodum
qui quae quod quem quam quo quorum quarum quos quas quibus quibusdam
quia quidem quippe quis quid quisnam quidnam quisque quodque quicumque quidquid quisquis
quoque quoniam quodsi
sed seu sive sine solum tantum tamen tam tum tunc
ubi ubiubi ubique uel vel vero versus
ut uti utrum
viris
`

var stopwords = func() map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(stopwordList) {
		set[strings.ToLower(w)] = true
	}
	return set
}()

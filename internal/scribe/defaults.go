package scribe

// NewDefaultIndex returns an index with a scribe for every standard property.
// Callers may Register additional scribes or replace standard ones.
func NewDefaultIndex() *Index {
	idx := NewIndex()
	for _, s := range []Scribe{
		NewAddressScribe(),
		NewAgentScribe(),
		NewAnniversaryScribe(),
		NewBirthdayScribe(),
		NewBirthplaceScribe(),
		NewCalendarRequestURIScribe(),
		NewCalendarURIScribe(),
		NewCategoriesScribe(),
		NewClassificationScribe(),
		NewClientPidMapScribe(),
		NewDeathdateScribe(),
		NewDeathplaceScribe(),
		NewEmailScribe(),
		NewExpertiseScribe(),
		NewFormattedNameScribe(),
		NewFreeBusyURLScribe(),
		NewGenderScribe(),
		NewGeoScribe(),
		NewHobbyScribe(),
		NewImppScribe(),
		NewInterestScribe(),
		NewKeyScribe(),
		NewKindScribe(),
		NewLabelScribe(),
		NewLanguageScribe(),
		NewLogoScribe(),
		NewMailerScribe(),
		NewMemberScribe(),
		NewStructuredNameScribe(),
		NewSourceDisplayNameScribe(),
		NewNicknameScribe(),
		NewNoteScribe(),
		NewOrganizationScribe(),
		NewOrgDirectoryScribe(),
		NewPhotoScribe(),
		NewProductIDScribe(),
		NewProfileScribe(),
		NewRelatedScribe(),
		NewRevisionScribe(),
		NewRoleScribe(),
		NewSortStringScribe(),
		NewSoundScribe(),
		NewSourceScribe(),
		NewTelephoneScribe(),
		NewTimezoneScribe(),
		NewTitleScribe(),
		NewUIDScribe(),
		NewURLScribe(),
		NewXMLScribe(),
	} {
		idx.Register(s)
	}
	return idx
}

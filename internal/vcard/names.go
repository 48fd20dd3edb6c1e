package vcard

// Property names.
const (
	PropAddress            = "ADR"
	PropAgent              = "AGENT"
	PropAnniversary        = "ANNIVERSARY"
	PropBirthday           = "BDAY"
	PropBirthplace         = "BIRTHPLACE"
	PropCalendarRequestURI = "CALADRURI"
	PropCalendarURI        = "CALURI"
	PropCategories         = "CATEGORIES"
	PropClass              = "CLASS"
	PropClientPidMap       = "CLIENTPIDMAP"
	PropDeathdate          = "DEATHDATE"
	PropDeathplace         = "DEATHPLACE"
	PropEmail              = "EMAIL"
	PropExpertise          = "EXPERTISE"
	PropFreeBusyURL        = "FBURL"
	PropFN                 = "FN"
	PropGender             = "GENDER"
	PropGeo                = "GEO"
	PropHobby              = "HOBBY"
	PropImpp               = "IMPP"
	PropInterest           = "INTEREST"
	PropKey                = "KEY"
	PropKind               = "KIND"
	PropLabel              = "LABEL"
	PropLang               = "LANG"
	PropLogo               = "LOGO"
	PropMailer             = "MAILER"
	PropMember             = "MEMBER"
	PropN                  = "N"
	PropName               = "NAME"
	PropNickname           = "NICKNAME"
	PropNote               = "NOTE"
	PropOrg                = "ORG"
	PropOrgDirectory       = "ORG-DIRECTORY"
	PropPhoto              = "PHOTO"
	PropProductID          = "PRODID"
	PropProfile            = "PROFILE"
	PropRelated            = "RELATED"
	PropRevision           = "REV"
	PropRole               = "ROLE"
	PropSortString         = "SORT-STRING"
	PropSound              = "SOUND"
	PropSource             = "SOURCE"
	PropTelephone          = "TEL"
	PropTitle              = "TITLE"
	PropTimezone           = "TZ"
	PropUID                = "UID"
	PropURL                = "URL"
	PropVersion            = "VERSION"
	PropXML                = "XML"
)

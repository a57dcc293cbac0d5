package record

// field declares where a canonical value may be found upstream, in precedence order,
// and what to substitute when none of the aliases is present.
type field struct {
	Name    string
	Aliases []string
	Default string
	// EmptyIsAbsent makes "" fall through to the next alias and finally suppress the value.
	// Only durations and dates distinguish "no value" from "empty value".
	EmptyIsAbsent bool
}

// Default header values used when the upstream record omits them.
const (
	DefaultName     = "John Doe"
	DefaultLocation = "Your Location"
	DefaultEmail    = "youremail@yourdomain.com"
	DefaultPhone    = "0541 999 99 99"
)

var (
	fieldName      = field{Name: "Name", Aliases: []string{"Name", "name", "FullName"}, Default: DefaultName}
	fieldLocation  = field{Name: "Location", Aliases: []string{"Location", "location", "Address"}, Default: DefaultLocation}
	fieldEmail     = field{Name: "Email", Aliases: []string{"Email", "email", "E-mail"}, Default: DefaultEmail}
	fieldPhone     = field{Name: "Phone", Aliases: []string{"Phone", "phone", "PhoneNumber", "Phone Number"}, Default: DefaultPhone}
	fieldLinkedIn  = field{Name: "LinkedIn", Aliases: []string{"LinkedIn", "Linkedin", "linkedin"}}
	fieldPortfolio = field{Name: "Portfolio", Aliases: []string{"Portfolio", "portfolio", "Website", "GitHub"}}
	fieldObjective = field{Name: "Objective", Aliases: []string{"Objective", "objective", "CareerObjective"}}
	fieldLanguages = field{Name: "Languages", Aliases: []string{"Languages", "languages"}}

	listSummary      = []string{"Summary", "summary", "ProfessionalSummary"}
	listEducation    = []string{"Education", "education"}
	listExperience   = []string{"Experience", "experience", "WorkExperience"}
	listProjects     = []string{"Projects", "projects"}
	listSkills       = []string{"Skills", "skills"}
	listCertificates = []string{"Certificates", "certificates", "Certifications"}
)

var (
	eduDegree     = field{Name: "Degree", Aliases: []string{"Degree", "degree"}, Default: "Bachelor of Science"}
	eduUniversity = field{Name: "University", Aliases: []string{"University", "university", "Institution"}, Default: "University Name"}
	eduLocation   = field{Name: "Location", Aliases: []string{"Location", "location"}}
	eduDuration   = field{Name: "Duration", Aliases: []string{"DurationOrYear", "Duration", "duration"}, EmptyIsAbsent: true}
	eduCGPA       = field{Name: "CGPA", Aliases: []string{"CGPA", "GPA", "cgpa"}}
	eduPercentage = field{Name: "Percentage", Aliases: []string{"Percentage", "percentage"}}
	eduCoursework = []string{"RelevantCoursework", "Coursework"}
	eduHonors     = []string{"HonorsAndQualifications", "Honors"}
)

var (
	expJobRole          = field{Name: "JobRole", Aliases: []string{"JobRole", "Job Role", "job role"}, Default: "Software Engineer"}
	expCompanyName      = field{Name: "CompanyName", Aliases: []string{"CompanyName", "Company Name", "company name"}, Default: "Tech Company"}
	expDuration         = field{Name: "Duration", Aliases: []string{"Duration", "duration"}, EmptyIsAbsent: true}
	expLocation         = field{Name: "Location", Aliases: []string{"Location", "location"}}
	expResponsibilities = field{Name: "Responsibilities", Aliases: []string{"Responsibilities", "what did user do"}}
	expWhat             = []string{"WhatHeDid"}
	expHow              = []string{"HowHeDidIt"}
	expImpact           = []string{"ImpactMade"}
)

var (
	projTitle       = field{Name: "Title", Aliases: []string{"Title", "title"}, Default: "Project Title"}
	projDescription = field{Name: "Description", Aliases: []string{"Description", "description"}}
	projLink        = field{Name: "Link", Aliases: []string{"Link", "link", "URL"}}
	projTools       = []string{"Tools", "tools", "Technologies"}
)

var (
	certName         = field{Name: "Name", Aliases: []string{"Name", "name"}, Default: "Certificate Name"}
	certOrganization = field{Name: "IssuingOrganization", Aliases: []string{"IssuingOrganization", "organization", "Issuer"}, Default: "Issuing Organization"}
	certDate         = field{Name: "Date", Aliases: []string{"Date", "date"}, EmptyIsAbsent: true}
	certExpiry       = field{Name: "ExpiryDate", Aliases: []string{"ExpiryDate", "expiryDate"}, EmptyIsAbsent: true}
	certNumber       = field{Name: "CertificateNumber", Aliases: []string{"CertificateNumber", "CredentialID"}}
	certVerification = field{Name: "VerificationURL", Aliases: []string{"VerificationURL", "verificationUrl"}}
	certDetails      = field{Name: "AdditionalDetails", Aliases: []string{"AdditionalDetails"}}
)

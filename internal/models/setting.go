package models

import "time"

type SocialMedia struct {
	Wechat string `json:"wechat"`
	Weibo  string `json:"weibo"`
	Douyin string `json:"douyin"`
}

// Setting — единственная строка настроек сайта (id = 1).
type Setting struct {
	SiteName           string      `json:"siteName"`
	SiteDescription    string      `json:"siteDescription"`
	ContactEmail       string      `json:"contactEmail"`
	Logo               string      `json:"logo"`
	Favicon            string      `json:"favicon"`
	FooterText         string      `json:"footerText"`
	ArticlesPerPage    int         `json:"articlesPerPage"`
	EnableComments     bool        `json:"enableComments"`
	EnableRegistration bool        `json:"enableRegistration"`
	SocialMedia        SocialMedia `json:"socialMedia"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

func DefaultSetting() Setting {
	return Setting{
		SiteName:           "江南旅游博客",
		SiteDescription:    "探索江南水乡的美丽风景和独特文化",
		ContactEmail:       "contact@jiangnan.com",
		Logo:               "/uploads/logo/default-logo.png",
		Favicon:            "/uploads/logo/favicon.ico",
		FooterText:         "© 2023 江南旅游博客 版权所有",
		ArticlesPerPage:    10,
		EnableComments:     true,
		EnableRegistration: true,
	}
}

// PublicSetting — подмножество, доступное без авторизации.
type PublicSetting struct {
	SiteName           string      `json:"siteName"`
	SiteDescription    string      `json:"siteDescription"`
	Logo               string      `json:"logo"`
	Favicon            string      `json:"favicon"`
	FooterText         string      `json:"footerText"`
	ArticlesPerPage    int         `json:"articlesPerPage"`
	EnableComments     bool        `json:"enableComments"`
	EnableRegistration bool        `json:"enableRegistration"`
	SocialMedia        SocialMedia `json:"socialMedia"`
}

func (s Setting) Public() PublicSetting {
	return PublicSetting{
		SiteName:           s.SiteName,
		SiteDescription:    s.SiteDescription,
		Logo:               s.Logo,
		Favicon:            s.Favicon,
		FooterText:         s.FooterText,
		ArticlesPerPage:    s.ArticlesPerPage,
		EnableComments:     s.EnableComments,
		EnableRegistration: s.EnableRegistration,
		SocialMedia:        s.SocialMedia,
	}
}

type UpdateSettingRequest struct {
	SiteName           *string      `json:"siteName,omitempty"`
	SiteDescription    *string      `json:"siteDescription,omitempty"`
	ContactEmail       *string      `json:"contactEmail,omitempty"`
	FooterText         *string      `json:"footerText,omitempty"`
	ArticlesPerPage    *int         `json:"articlesPerPage,omitempty"`
	EnableComments     *bool        `json:"enableComments,omitempty"`
	EnableRegistration *bool        `json:"enableRegistration,omitempty"`
	SocialMedia        *SocialMedia `json:"socialMedia,omitempty"`
}

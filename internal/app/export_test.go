package app

var CompareVersions = compareVersions

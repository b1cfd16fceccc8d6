// Package files discovers experiment directories and classifies the raw
// measurement files inside them.
//
// Discovery lists the experiment subdirectories of an input root and the
// plain files of each experiment. Classifier maps every file name to the
// experiment series it belongs to, its resolution (minutes or seconds) and its
// part index; files with a foreign extension, editor lock files and auxiliary
// exports are reported as ignored.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data/raw", config.NestedDirsError, logger)
//	classifier := files.NewClassifier(cfg.Naming, logger)
//
//	experiments, err := discovery.ListExperiments()
//	for _, exp := range experiments {
//	    entries, err := discovery.ListExperimentFiles(exp.Path)
//	    result, err := classifier.Classify(exp.Name, entries)
//	}
package files
